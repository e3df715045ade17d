package main

import (
	"fmt"
	"os"

	"ramble/cmd/ramble/cmd"
	"ramble/internal/config"
)

func main() {
	// A missing .env file is fine, deployments configure through the
	// environment.
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cmd.Execute()
}
