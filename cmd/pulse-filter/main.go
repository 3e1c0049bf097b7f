// Command pulse-filter mirrors a GPIO input on an output, suppressing high
// pulses shorter than a threshold.
package main

import (
	"os"

	"github.com/sweeney/pulse-filter/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
