package main

import (
	"os"

	"github.com/banux/nxt-albums/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
