// Package commands implements the dmc CLI commands.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/config"
)

var versionInfo struct {
	version string
	commit  string
	date    string
}

// SetVersionInfo sets version information from main (populated by goreleaser).
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
}

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "dmc",
	Short: "Direct messages in the terminal",
	Long: `dmc is a terminal client for a direct-message server.

Run without arguments on a terminal to open the full-screen client: the
conversation list on the left, the open thread on the right, and a user
search to start new conversations. The open thread refreshes every few
seconds while it is selected.

Setup:
  dmc init                    - Write .dmc.yaml (server URL and session)

Commands:
  dmc conversations           - List conversations with unread counts
  dmc messages <id>           - Show a thread and mark it read
  dmc send <id> <text>        - Send a message
  dmc search <query>          - Find users by username or email
  dmc open <username>         - Start (or reopen) a conversation
  dmc watch <id>              - Follow a thread until interrupted
  dmc tui                     - Open the full-screen client
  dmc health                  - Check the server and your session

Environment variables:
  DMC_URL        - Server URL (overrides server_url)
  DMC_SESSION    - Session cookie value (overrides session_cookie)
  DMC_ME         - Your username when the page does not show it
  DMC_LOG_LEVEL  - debug, info, warn or error
  DMC_LOG_FILE   - Log file used by the full-screen client`,
	Args: cobra.NoArgs,
	// Don't show usage/errors on errors from subcommands (main.go handles errors)
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTTY() {
			return cmd.Help()
		}
		return runTUI(cmd, args)
	},
}

func init() {
	// Disable cobra's auto-generated commands - they pollute the namespace
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-op", Hidden: true, Run: func(*cobra.Command, []string) {}})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Use an alternate config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			config.SetPath(configPath)
		}
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(conversationsCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(healthCmd)
}

func loadDotenvBestEffort() {
	// Prefer the directory holding the config file so subdir invocations work.
	if path, err := config.FindPath(); err == nil {
		if err := godotenv.Load(filepath.Join(filepath.Dir(path), ".env")); err == nil {
			return
		}
	}
	_ = godotenv.Load()
}

// Execute runs the root command. Interrupts cancel the command context, which
// ends watch and the full-screen client cleanly.
func Execute() error {
	if len(os.Args) > 1 && (os.Args[1] == "-V" || os.Args[1] == "--version") {
		printVersion()
		return nil
	}

	loadDotenvBestEffort()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer config.SetPath("")
	return rootCmd.ExecuteContext(ctx)
}

func printVersion() {
	fmt.Printf("dmc %s\n", versionInfo.version)
	if versionInfo.commit != "" && versionInfo.commit != "none" {
		fmt.Printf("  commit: %s\n", versionInfo.commit)
	}
	if versionInfo.date != "" && versionInfo.date != "unknown" {
		fmt.Printf("  built:  %s\n", versionInfo.date)
	}
}
