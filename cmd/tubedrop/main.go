package main

import (
	"fmt"
	"os"

	"github.com/aatumaykin/tubedrop/internal/version"
)

// Set with -ldflags "-X main.Version=..." at build time.
var (
	Version   string
	BuildTime string
	GitCommit string
	GoVersion string
)

func init() {
	version.SetInfo(Version, BuildTime, GitCommit, GoVersion)
	rootCmd.Version = version.Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
