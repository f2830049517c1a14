package main

import (
	"github.com/outpostkit/fetch/internal/cli"
)

func main() {
	cli.Execute()
}
