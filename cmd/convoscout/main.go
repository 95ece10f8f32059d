package main

import (
	"os"

	"github.com/csheth/convoscout/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
