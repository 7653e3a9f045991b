// Package main is the entry point for the vjtap header decompressor.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/vjtap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
