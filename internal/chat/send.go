package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/directmsg/dmc/internal/logging"
)

// Send posts body to the selected conversation, then clears the composer and
// refreshes the thread and the list.
//
// Only one send runs at a time: a call made while another is in flight
// returns (false, nil) without a request, as does a blank body. The returned
// bool reports whether the message was posted; an error after a successful
// post comes from the follow-up refresh, and is only returned while the
// conversation is still selected.
func (c *Controller) Send(ctx context.Context, body string) (bool, error) {
	if !c.sending.TryAcquire(1) {
		return false, nil
	}
	defer c.sending.Release(1)

	id, ok := c.Active()
	if !ok {
		return false, ErrNoSelection
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return false, nil
	}
	if utf8.RuneCountInString(body) > MaxBodyLength {
		return false, ErrBodyTooLong
	}

	c.sink.SetSending(true)
	defer c.sink.SetSending(false)

	msg, err := c.api.SendMessage(ctx, id, body)
	if err != nil {
		return false, fmt.Errorf("sending message: %w", err)
	}
	c.log.Info("message sent", logging.F("conversation", id), logging.F("message", msg.ID))

	c.sink.ClearComposer()
	if err := c.refresh(ctx, id); err != nil {
		if active, ok := c.Active(); !ok || active != id {
			c.log.Warn("refresh after send failed", logging.F("conversation", id), logging.Err(err))
			return true, nil
		}
		return true, err
	}
	return true, nil
}
