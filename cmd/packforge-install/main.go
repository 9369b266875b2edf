package main

import "github.com/packforge/packforge/cmd/packforge-install/cmd"

func main() {
	cmd.Execute()
}
