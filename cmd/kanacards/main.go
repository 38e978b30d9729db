// Package main implements the kanacards command: a spaced-repetition
// scheduler for Japanese vocabulary with a CLI review loop, CSV import and
// export, and an HTTP API.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
