package main

import "github.com/rmoliv/powerfit/cmd"

func main() {
	cmd.Execute()
}
