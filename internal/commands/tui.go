package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/logging"
	"github.com/directmsg/dmc/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the full-screen client",
	Long: `Open the full-screen client. This is also what 'dmc' does on a terminal.

Keys:
  up/down, j/k   Move in the conversation list
  enter          Open the conversation / send the message
  /              Search users
  tab            Switch between list, composer and search
  esc            Close the search
  q, ctrl+c      Quit

Logs go to log_file (default: dmc.log in the temp dir).`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logging.Debug
	}
	log, closer, err := logging.OpenFile(cfg.LogFileOrDefault(), level)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx := cmd.Context()
	s, err := openSession(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	log.Info("starting", logging.F("server", cfg.BaseURL()), logging.F("me", s.me))

	if err := tui.Run(ctx, s.client, tui.Options{
		Me:             s.me,
		PollInterval:   cfg.PollIntervalDuration(),
		SearchDelay:    cfg.SearchDelayDuration(),
		MinQueryLength: cfg.MinQueryLengthOrDefault(),
		Logger:         log,
	}); err != nil {
		return fmt.Errorf("running client: %w", err)
	}
	return nil
}
