package main

import "github.com/masmgr/git-deps/cmd"

func main() {
	cmd.Run()
}
