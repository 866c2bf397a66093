package main

import "github.com/gleaner-cli/gleaner/internal/cli"

func main() {
	cli.Execute()
}
