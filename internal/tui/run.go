package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/logging"
)

// Options configures Run.
type Options struct {
	Me             string
	PollInterval   time.Duration
	SearchDelay    time.Duration
	MinQueryLength int
	Logger         logging.Logger
}

// Run shows the client full screen until the user quits or ctx is done.
func Run(ctx context.Context, api chat.API, opts Options) error {
	box := newInbox()
	ctl := chat.New(api, sink{box: box}, chat.Options{
		Me:             opts.Me,
		PollInterval:   opts.PollInterval,
		SearchDelay:    opts.SearchDelay,
		MinQueryLength: opts.MinQueryLength,
		Logger:         opts.Logger,
	})
	defer ctl.Close()

	p := tea.NewProgram(newModel(ctl, box, opts.Me),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
