package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/config"
	"github.com/directmsg/dmc/internal/logging"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <conversation-id>",
	Short: "Follow a conversation until interrupted",
	Long: `Print a conversation and then every new message as it arrives. The
conversation is refreshed on the poll interval (poll_interval, default 2.5s)
and marked read each time. Stop with Ctrl-C.

Examples:
  dmc watch 42
  dmc watch 42 --interval 10s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (overrides poll_interval)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	id, err := parseConversationID(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchInterval < 0 {
		return fmt.Errorf("--interval must be positive")
	}
	if watchInterval > 0 {
		cfg.PollInterval = watchInterval.String()
	}
	return watchWithConfig(cmd.Context(), cfg, id, color.Output)
}

// watchWithConfig follows a conversation until ctx is done (for testing).
func watchWithConfig(ctx context.Context, cfg *config.Config, id int64, out io.Writer) error {
	log := newLogger(cfg)
	s, err := openSession(ctx, cfg, log, true)
	if err != nil {
		return err
	}

	printer := &threadPrinter{out: out}
	sink := &cliSink{onThread: printer.print}
	ctl := s.controller(sink)
	defer ctl.Close()

	if err := ctl.Start(ctx); err != nil {
		return describeAPIError(err)
	}
	name := conversationName(sink.Rows(), id)
	fmt.Fprintln(out, color.New(color.Bold, color.Underline).Sprint(chat.Title(id, name)))

	// A failed first load is retried by the poll.
	if err := ctl.Select(ctx, id, name); err != nil {
		log.Warn("initial load failed", logging.F("conversation", id), logging.Err(err))
	}
	<-ctx.Done()
	return nil
}
