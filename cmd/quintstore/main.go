package main

import (
	"os"

	"github.com/undefinedsco/quintstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
