package chat

import (
	"context"

	"github.com/directmsg/dmc/internal/logging"
)

// Select makes id the active conversation. The previous poll loop is
// cancelled, the thread and list are refreshed once, and a new poll loop is
// started that repeats the refresh every PollInterval for as long as id stays
// selected.
//
// The poll loop starts even when the first refresh fails; that error is
// returned for the caller to show. Requests already in flight for the
// previous selection are not cancelled, but their responses are dropped.
func (c *Controller) Select(ctx context.Context, id int64, name string) error {
	c.st.mu.Lock()
	if c.st.closed {
		c.st.mu.Unlock()
		return nil
	}
	gen := c.st.activate(id)
	c.sink.ShowTitle(Title(id, name))
	c.st.mu.Unlock()

	c.log.Info("conversation selected", logging.F("conversation", id))
	err := c.refresh(ctx, id)
	c.schedulePoll(gen)
	return err
}

// schedulePoll arms the next tick for generation gen, unless a newer
// selection or Close has taken over.
func (c *Controller) schedulePoll(gen uint64) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if !c.st.isCurrent(gen) {
		return
	}
	if c.st.poll != nil {
		c.st.poll.Stop()
	}
	c.st.poll = c.opts.Clock.AfterFunc(c.opts.PollInterval, func() {
		c.pollTick(gen)
	})
}

// pollTick refreshes the selected conversation. Failures are logged and the
// next tick is armed regardless.
func (c *Controller) pollTick(gen uint64) {
	c.st.mu.Lock()
	if !c.st.isCurrent(gen) {
		c.st.mu.Unlock()
		return
	}
	id := c.st.active
	c.st.poll = nil
	c.st.mu.Unlock()

	if err := c.refresh(c.ctx, id); err != nil {
		c.log.Warn("poll tick failed", logging.F("conversation", id), logging.Err(err))
	}
	c.schedulePoll(gen)
}
