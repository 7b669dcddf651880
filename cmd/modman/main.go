package main

import "github.com/ratmods/modman/pkg/cmd"

func main() {
	cmd.Execute()
}
