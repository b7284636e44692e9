// Package main provides the entry point for the amanignore CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/amanignore/cmd/amanignore/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Stderr))
}
