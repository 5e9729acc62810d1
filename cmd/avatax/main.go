package main

import (
	"fmt"
	"os"

	"github.com/han8909227/avatax-go/cmd/avatax/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
