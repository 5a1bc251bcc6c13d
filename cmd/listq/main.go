// Command listq is the offline-first shared list client.
package main

import (
	"os"

	"github.com/kaurvahtra/listq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
