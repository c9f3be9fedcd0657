package main

import (
	"os"

	"github.com/crisphire/crisp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
