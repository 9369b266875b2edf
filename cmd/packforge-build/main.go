package main

import "github.com/packforge/packforge/cmd/packforge-build/cmd"

func main() {
	cmd.Execute()
}
