package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/gulp/internal/picker"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Selection cancelled by user")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
