// Command cslc is the CSL compiler's command-line front end.
package main

import (
	"fmt"
	"os"

	"github.com/flipboards/cslc/cmd/cslc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
