// dmc - direct messages in the terminal
//
// Keeps a conversation list and the open thread in step with a
// direct-message server: the selected conversation is polled, read state
// follows what is shown, and users can be searched to start conversations.
package main

import (
	"fmt"
	"os"

	"github.com/directmsg/dmc/internal/commands"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
