// ABOUTME: Entry point for the kabar terminal client
// ABOUTME: Interactive TUI by default, scriptable subcommands for everything else

package main

import (
	"fmt"
	"os"

	"github.com/kabar-app/kabar/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
