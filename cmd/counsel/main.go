// Command counsel analyses legal documents locally, without a database or
// blob store: the same extraction, clause analysis, Q&A and export the
// service performs, run against a file on disk.
package main

import (
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
