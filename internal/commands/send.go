package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/config"
	"github.com/directmsg/dmc/internal/logging"
)

var sendCmd = &cobra.Command{
	Use:   "send <conversation-id> <message>...",
	Short: "Send a message",
	Long: `Send a message to a conversation. The words after the id are joined with
spaces; use "-" to read the message from stdin.

Examples:
  dmc send 42 see you at 10
  echo "long text" | dmc send 42 -`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

// SendResult contains the result of the send command.
type SendResult struct {
	ConversationID int64  `json:"conversation_id"`
	Title          string `json:"title"`
}

func runSend(cmd *cobra.Command, args []string) error {
	id, err := parseConversationID(args[0])
	if err != nil {
		return err
	}
	body := strings.Join(args[1:], " ")
	if body == "-" {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, 4*chat.MaxBodyLength+1))
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		body = string(data)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := sendWithConfig(cmd.Context(), cfg, id, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(color.Output, "Sent to %s\n", color.New(color.Bold).Sprint(result.Title))
	return nil
}

// sendWithConfig selects the conversation and sends body through the
// controller's single-flight path (for testing).
func sendWithConfig(ctx context.Context, cfg *config.Config, id int64, body string) (*SendResult, error) {
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

	sent, err := ctl.Send(ctx, body)
	if err != nil {
		var validationErr *chat.ValidationError
		if errors.As(err, &validationErr) {
			return nil, err
		}
		if !sent {
			return nil, describeAPIError(err)
		}
		// The post went through; only the refresh after it failed.
		s.log.Warn("refresh after send failed", logging.Err(err))
	}
	if !sent {
		return nil, fmt.Errorf("message is empty")
	}
	title, _ := sink.Thread()
	return &SendResult{ConversationID: id, Title: title}, nil
}
