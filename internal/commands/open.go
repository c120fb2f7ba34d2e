package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/config"
)

var openJSON bool

var openCmd = &cobra.Command{
	Use:   "open <username>",
	Short: "Start or reopen a conversation with a user",
	Long: `Open the conversation with a user, creating it if it does not exist yet,
and show it. The username must match a search result exactly (case is
ignored).

Examples:
  dmc open bob
  dmc open bob --json`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().BoolVar(&openJSON, "json", false, "Output as JSON")
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := openWithConfig(cmd.Context(), cfg, args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(color.Output, formatThreadOutput(result, openJSON))
	return nil
}

// openWithConfig picks the exact search match for username and opens the
// conversation with it (for testing).
func openWithConfig(ctx context.Context, cfg *config.Config, username string) (*ThreadResult, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	s, err := openSession(ctx, cfg, newLogger(cfg), true)
	if err != nil {
		return nil, err
	}
	sink := &cliSink{}
	ctl := s.controller(sink)
	defer ctl.Close()

	view, err := ctl.Search(ctx, username)
	if err != nil {
		return nil, describeAPIError(err)
	}
	if !view.Open() {
		return nil, fmt.Errorf("username must be at least %d characters", cfg.MinQueryLengthOrDefault())
	}
	entry, ok := exactMatch(view, username)
	if !ok {
		return nil, noMatchError(view, username)
	}

	if _, err := ctl.ChooseResult(ctx, entry.UserID, entry.Username); err != nil {
		return nil, describeAPIError(err)
	}
	title, thread := sink.Thread()
	return threadResult(title, thread), nil
}

func exactMatch(view chat.SearchView, username string) (chat.SearchEntry, bool) {
	for _, e := range view.Entries {
		if strings.EqualFold(e.Username, username) {
			return e, true
		}
	}
	return chat.SearchEntry{}, false
}

func noMatchError(view chat.SearchView, username string) error {
	if len(view.Entries) == 0 {
		return fmt.Errorf("no user named %q", username)
	}
	names := make([]string, 0, len(view.Entries))
	for _, e := range view.Entries {
		names = append(names, e.Username)
	}
	return fmt.Errorf("no user named %q (did you mean: %s?)", username, strings.Join(names, ", "))
}
