package main

import (
	"github.com/tmurata/inspection-dispatch/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
