package main

import "github.com/packforge/packforge/cmd/packforge-verify/cmd"

func main() {
	cmd.Execute()
}
