// Command srsctl is the operator and developer CLI: database migrations,
// dev token minting, and a terminal study session against a running server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "srsctl:", err)
		os.Exit(1)
	}
}
