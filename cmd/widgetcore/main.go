// Command widgetcore drives a widget hierarchy through the dispatch core
// with a simulated pointer driver.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/widgetcore/cmd/widgetcore/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
