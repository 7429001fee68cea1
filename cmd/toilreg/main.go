// Package main provides the entry point for the toilreg CLI tool.
package main

import "github.com/tech4life-beyond/toil-registry/cmd/toilreg/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
