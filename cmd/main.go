package main

import (
	"github.com/dyike/FinSage/internal/cli"
)

func main() {
	cli.Run()
}
