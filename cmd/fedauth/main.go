package main

import (
	"os"

	"github.com/aussiebroadwan/fedauth/internal/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultOptions())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
