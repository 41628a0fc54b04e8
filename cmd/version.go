package cmd

import "fmt"

// Version information (injected at build time via ldflags).
var (
	AppVersion = "0.1.0"
	GitCommit  = "unknown"
)

// runVersion prints version information.
func runVersion() {
	fmt.Printf("supportbot %s (%s)\n", AppVersion, GitCommit)
}
