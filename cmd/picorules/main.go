package main

import (
	"os"

	"github.com/asaabey/picorules/cmd/picorules/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
