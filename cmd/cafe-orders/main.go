package main

import (
	"fmt"
	"os"

	"cafe-orders/internal/cli"
	"cafe-orders/internal/env"
)

func main() {
	env.Load(".env", ".env.local")

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
