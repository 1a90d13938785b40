package main

import (
	"os"

	"github.com/esteemapp/surfer-core/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
