// Package main provides the gnrecon CLI application.
// gnrecon reconciles a gardening catalog genus against authoritative
// taxonomic checklists.
package main

import (
	"errors"
	"os"

	"github.com/gnames/gnrecon/cmd"
	"github.com/gnames/gnrecon/pkg/gnrecon"
)

func main() {
	err := cmd.Execute()
	switch {
	case err == nil:
		os.Exit(0)
	case errors.Is(err, gnrecon.ErrChangesPending):
		// Pending changes are not a failure, but scripts need to
		// distinguish them from a clean run.
		os.Exit(2)
	default:
		os.Exit(1)
	}
}
