package main

import (
	"fmt"
	"os"

	"github.com/avafanasiev/copybara/cmd/cli"
)

func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintln(os.Stderr, executionError)
		os.Exit(1)
	}
}
