package main

import (
	"os"

	"github.com/tormodhaugland/lastimport/cmd/lastimport/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
