// Command fosdash is the entry point for the FOS complaints dashboard CLI.
package main

import (
	"github.com/huangsam/fosdash/cmd"
	"github.com/huangsam/fosdash/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("fosdash failed", err)
	}
}
