package main

import (
	"fmt"
	"os"

	"github.com/openkraft/portcore/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "portcore:", err)
		os.Exit(1)
	}
}
