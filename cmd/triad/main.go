// main is the entry point of the triad CLI.
package main

import (
	"os"

	"github.com/RyanBlaney/sonido-triad/cmd"
	"github.com/RyanBlaney/sonido-triad/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error(err, "triad failed")
		os.Exit(1)
	}
}
