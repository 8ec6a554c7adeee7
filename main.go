package main

import (
	"os"

	"github.com/Lumos-Labs-HQ/dotaseed/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
