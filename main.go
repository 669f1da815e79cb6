package main

import "github.com/kozaktomas/reverse-prompt/cmd"

func main() {
	cmd.Execute()
}
