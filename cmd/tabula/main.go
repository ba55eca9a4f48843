package main

import (
	"os"

	"github.com/spektr-org/tabula/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
