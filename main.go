package main

import (
	"os"

	"github.com/pstuifzand/subtasks/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
