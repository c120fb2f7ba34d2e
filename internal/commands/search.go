package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/config"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find users by username or email",
	Long: `Search other users by username or email. Queries shorter than the
minimum length (min_query_length, default 2) are rejected without asking
the server.

Examples:
  dmc search bo               # Users matching "bo"
  dmc search bob --json       # Output as JSON`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

// UserInfo is one search match for display.
type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// SearchResult contains the result of the search command.
type SearchResult struct {
	Query string     `json:"query"`
	Users []UserInfo `json:"users"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := searchWithConfig(cmd.Context(), cfg, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprint(color.Output, formatSearchOutput(result, searchJSON))
	return nil
}

// searchWithConfig runs one query immediately (for testing).
func searchWithConfig(ctx context.Context, cfg *config.Config, query string) (*SearchResult, error) {
	s, err := openSession(ctx, cfg, newLogger(cfg), false)
	if err != nil {
		return nil, err
	}
	ctl := s.controller(&cliSink{})
	defer ctl.Close()

	view, err := ctl.Search(ctx, query)
	if err != nil {
		return nil, describeAPIError(err)
	}
	if !view.Open() {
		return nil, fmt.Errorf("query must be at least %d characters", cfg.MinQueryLengthOrDefault())
	}
	return searchResult(view), nil
}

func searchResult(view chat.SearchView) *SearchResult {
	result := &SearchResult{Query: view.Query, Users: make([]UserInfo, 0, len(view.Entries))}
	for _, e := range view.Entries {
		result.Users = append(result.Users, UserInfo{ID: e.UserID, Username: e.Username})
	}
	return result
}

func formatSearchOutput(result *SearchResult, jsonMode bool) string {
	if jsonMode {
		return renderJSON(result)
	}
	if len(result.Users) == 0 {
		return chat.NoResultsText + "\n"
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Username"))
	for _, u := range result.Users {
		tbl.AddRow(u.ID, u.Username)
	}
	tbl.RightAlign(0)
	return tbl.String() + "\n"
}
