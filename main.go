package main

import "github.com/rocketscienceinc/tictactoe-arena/internal/cli"

// main - is the entry point of the application.
func main() {
	cli.Execute()
}
