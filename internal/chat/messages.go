package chat

import (
	"context"
	"fmt"

	"github.com/directmsg/dmc/internal/logging"
)

// refreshMessages fetches a conversation's newest messages, draws them oldest
// first and marks the conversation read. Marking read clears the unread
// badge, so the response is dropped (and nothing is marked) unless id is
// still selected and no later messages request has been issued. A refresh
// for a conversation that is no longer selected does nothing, so it cannot
// supersede the selected one's request.
func (c *Controller) refreshMessages(ctx context.Context, id int64) error {
	seq, ok := c.st.nextMessagesSeq(id)
	if !ok {
		c.log.Debug("skipping refresh of unselected conversation", logging.F("conversation", id))
		return nil
	}
	page, err := c.api.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("loading messages: %w", err)
	}

	c.st.mu.Lock()
	if c.st.closed || id != c.st.active || seq != c.st.messagesSeq {
		c.st.mu.Unlock()
		c.log.Debug("dropping stale messages",
			logging.F("conversation", id),
			logging.F("seq", seq),
		)
		return nil
	}
	c.sink.ShowThread(Thread(id, page.Results, c.opts.Me))
	c.st.mu.Unlock()

	if _, err := c.api.MarkRead(ctx, id, nil); err != nil {
		return fmt.Errorf("marking conversation read: %w", err)
	}
	return nil
}

// refresh is one poll tick's worth of work: the thread, then the list.
func (c *Controller) refresh(ctx context.Context, id int64) error {
	if err := c.refreshMessages(ctx, id); err != nil {
		return err
	}
	return c.RefreshConversations(ctx)
}
