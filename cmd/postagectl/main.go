// Package main is the postagectl command line.
package main

import (
	"fmt"
	"os"

	"github.com/jsamuelsen/postage-service/internal/adapters/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
