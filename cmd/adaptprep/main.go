// Command adaptprep is a demo CLI that drives the adaptive core's
// diagnostic, practice, and spaced-repetition review controllers end to
// end for manual verification — an "external UI" stand-in, not a
// replacement for a real product's TUI or web UI.
package main

import (
	"fmt"
	"os"

	"github.com/abhisek/adaptprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "adaptprep:", err)
		os.Exit(1)
	}
}
