package main

import (
	"os"

	"github.com/socivio/socivio/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
