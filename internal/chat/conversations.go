package chat

import (
	"context"
	"fmt"

	"github.com/directmsg/dmc/internal/logging"
)

// RefreshConversations fetches the conversation list and replaces the drawn
// list with it, in server order. A response overtaken by a later refresh is
// dropped.
func (c *Controller) RefreshConversations(ctx context.Context) error {
	seq := c.st.nextListSeq()
	convs, err := c.api.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("loading conversations: %w", err)
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.closed || seq != c.st.listSeq {
		c.log.Debug("dropping stale conversation list", logging.F("seq", seq))
		return nil
	}
	c.sink.ShowConversations(ConversationRows(convs))
	return nil
}
