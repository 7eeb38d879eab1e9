package main

import (
	"os"

	"github.com/vinayprograms/toolreg/cmd/toolreg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
