package main

import (
	"os"

	"github.com/flycloudone/flycloud/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
