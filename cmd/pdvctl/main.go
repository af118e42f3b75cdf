// Command pdvctl runs maintenance tasks against the point of sale store:
// schema setup, receipt delivery and report export.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
