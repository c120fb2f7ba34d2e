package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/config"
)

var messagesJSON bool

var messagesCmd = &cobra.Command{
	Use:   "messages <conversation-id>",
	Short: "Show a conversation and mark it read",
	Long: `Show the newest page of a conversation, oldest message first, and mark
the conversation read.

Examples:
  dmc messages 42             # Show conversation #42
  dmc messages 42 --json      # Output as JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runMessages,
}

func init() {
	messagesCmd.Flags().BoolVar(&messagesJSON, "json", false, "Output as JSON")
}

// MessageInfo is one message for display.
type MessageInfo struct {
	ID        int64  `json:"id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Mine      bool   `json:"mine"`
}

// ThreadResult contains the result of the messages command.
type ThreadResult struct {
	ConversationID int64         `json:"conversation_id"`
	Title          string        `json:"title"`
	Messages       []MessageInfo `json:"messages"`
}

func runMessages(cmd *cobra.Command, args []string) error {
	id, err := parseConversationID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := fetchThreadWithConfig(cmd.Context(), cfg, id)
	if err != nil {
		return err
	}
	fmt.Fprint(color.Output, formatThreadOutput(result, messagesJSON))
	return nil
}

// fetchThreadWithConfig selects a conversation the way the full-screen client
// does (load, draw, mark read) and returns what was drawn.
func fetchThreadWithConfig(ctx context.Context, cfg *config.Config, id int64) (*ThreadResult, error) {
	s, err := openSession(ctx, cfg, newLogger(cfg), true)
	if err != nil {
		return nil, err
	}
	sink := &cliSink{}
	ctl := s.controller(sink)
	defer ctl.Close()

	if err := ctl.Start(ctx); err != nil {
		return nil, describeAPIError(err)
	}
	if err := ctl.Select(ctx, id, conversationName(sink.Rows(), id)); err != nil {
		return nil, describeAPIError(err)
	}
	title, thread := sink.Thread()
	return threadResult(title, thread), nil
}

func threadResult(title string, thread chat.ThreadView) *ThreadResult {
	result := &ThreadResult{
		ConversationID: thread.ConversationID,
		Title:          title,
		Messages:       make([]MessageInfo, 0, len(thread.Lines)),
	}
	for _, line := range thread.Lines {
		result.Messages = append(result.Messages, messageInfo(line))
	}
	return result
}

// messageInfo drops the terminal hyperlinks the thread view adds to bodies.
func messageInfo(line chat.ThreadLine) MessageInfo {
	return MessageInfo{
		ID:        line.ID,
		Sender:    line.Sender,
		Body:      xansi.Strip(line.Body),
		CreatedAt: line.CreatedAt,
		Mine:      line.Mine,
	}
}

func formatThreadOutput(result *ThreadResult, jsonMode bool) string {
	if jsonMode {
		return renderJSON(result)
	}

	var sb strings.Builder
	sb.WriteString(color.New(color.Bold, color.Underline).Sprint(result.Title))
	sb.WriteString("\n\n")
	if len(result.Messages) == 0 {
		sb.WriteString("No messages yet.\n")
		return sb.String()
	}
	for _, m := range result.Messages {
		sb.WriteString(formatMessage(m))
	}
	return sb.String()
}

func formatMessage(m MessageInfo) string {
	sender := color.New(color.Bold)
	if m.Mine {
		sender = color.New(color.Bold, color.FgCyan)
	}
	name := m.Sender
	if name == "" {
		name = chat.UnknownUser
	}

	var sb strings.Builder
	sb.WriteString(sender.Sprint(name))
	sb.WriteString(color.New(color.Faint).Sprintf(" • %s", messageAge(m.CreatedAt, time.Now())))
	sb.WriteString("\n")
	for _, line := range strings.Split(m.Body, "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// threadPrinter writes each message once, in order, as threads are redrawn.
type threadPrinter struct {
	out    io.Writer
	lastID int64
}

func (p *threadPrinter) print(thread chat.ThreadView) {
	for _, line := range thread.Lines {
		if line.ID <= p.lastID {
			continue
		}
		fmt.Fprint(p.out, formatMessage(messageInfo(line)))
		p.lastID = line.ID
	}
}
