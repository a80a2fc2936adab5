package main

import (
	"fmt"
	"os"

	"launch_notifier/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "launchbot: %v\n", err)
		os.Exit(1)
	}
}
