package main

import "github.com/driftcheck/driftcheck/internal/cli"

func main() {
	cli.Execute()
}
