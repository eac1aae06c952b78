// articlehub is a terminal client for the article sharing platform, plus
// an in-memory API to run it against.
//
// Boot the fake API:
// ------------------
// $ articlehub mockapi
//
// Start the client:
// -----------------
// $ articlehub shell
// guest > login peter@example.com Passw0rd!
// PE > feed
// PE > open <article-id>
// PE > articles
// PE > new
// PE > set title Hello
// PE > save
//
// Print the fake API's route docs:
// --------------------------------
// $ articlehub mockapi --routes
package main

import (
	"fmt"
	"os"

	"github.com/SergeyParamoshkin/articlehub/cmd"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, buildTime)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
