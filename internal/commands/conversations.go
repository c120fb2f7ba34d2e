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

var conversationsJSON bool

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List your conversations",
	Long: `List your conversations in the order the server returns them (most
recent activity first), with the last message and the unread count.

Examples:
  dmc conversations           # Table of conversations
  dmc ls --json               # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runConversations,
}

func init() {
	conversationsCmd.Flags().BoolVar(&conversationsJSON, "json", false, "Output as JSON")
}

// ConversationInfo is one conversation for display.
type ConversationInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	LastMessage string `json:"last_message,omitempty"`
	UnreadCount int    `json:"unread_count"`
}

// ConversationsResult contains the result of the conversations command.
type ConversationsResult struct {
	Conversations []ConversationInfo `json:"conversations"`
}

func runConversations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := fetchConversationsWithConfig(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(color.Output, formatConversationsOutput(result, conversationsJSON))
	return nil
}

// fetchConversationsWithConfig loads the conversation list using the provided config (for testing).
func fetchConversationsWithConfig(ctx context.Context, cfg *config.Config) (*ConversationsResult, error) {
	s, err := openSession(ctx, cfg, newLogger(cfg), false)
	if err != nil {
		return nil, err
	}
	sink := &cliSink{}
	ctl := s.controller(sink)
	defer ctl.Close()

	if err := ctl.Start(ctx); err != nil {
		return nil, describeAPIError(err)
	}
	return &ConversationsResult{Conversations: conversationInfos(sink.Rows())}, nil
}

func conversationInfos(rows []chat.ConversationRow) []ConversationInfo {
	infos := make([]ConversationInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, ConversationInfo{
			ID:          row.ID,
			Name:        row.Name,
			LastMessage: row.Preview,
			UnreadCount: row.Unread,
		})
	}
	return infos
}

func formatConversationsOutput(result *ConversationsResult, jsonMode bool) string {
	if jsonMode {
		return renderJSON(result)
	}
	if len(result.Conversations) == 0 {
		return "No conversations yet. Start one with 'dmc open <username>'.\n"
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	badge := color.New(color.FgHiWhite, color.BgBlue, color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("With"), bold.Sprint("Unread"), bold.Sprint("Last message"))
	for _, c := range result.Conversations {
		unread := ""
		if c.UnreadCount > 0 {
			unread = badge.Sprintf(" %d ", c.UnreadCount)
		}
		preview := c.LastMessage
		if preview == "" {
			preview = faint.Sprint("(no messages)")
		}
		tbl.AddRow(fmt.Sprintf("#%d", c.ID), c.Name, unread, preview)
	}
	tbl.RightAlign(0)

	var sb strings.Builder
	sb.WriteString(tbl.String())
	sb.WriteString("\n")
	return sb.String()
}
