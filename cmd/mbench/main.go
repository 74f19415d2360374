package main

import (
	"os"

	"github.com/slittycode/model-benchmark/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
