package main

import "github.com/sykell/herd-inventory/internal/cli"

func main() {
	cli.Execute()
}
