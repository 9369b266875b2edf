package integration

import (
	"os"
	"testing"
)

// chdir changes the working directory to dir and restores the previous
// working directory when the test finishes, mirroring testing.T.Chdir,
// which is unavailable on the Go toolchain used to run these tests.
func chdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
