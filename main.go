package main

import (
	"os"

	"github.com/fersoria001/clearly/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
