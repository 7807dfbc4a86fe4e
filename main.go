package main

import "github.com/karteek/splitcard/cmd"

func main() {
	cmd.Execute()
}
