package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/directmsg/dmc/internal/logging"
)

// SearchInput records the current search text. The query runs once the text
// has been left alone for SearchDelay; every call restarts that wait and
// drops responses to earlier queries.
func (c *Controller) SearchInput(text string) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.closed {
		return
	}
	seq := c.st.resetSearch()
	c.st.searchTimer = c.opts.Clock.AfterFunc(c.opts.SearchDelay, func() {
		c.searchSettled(seq, text)
	})
}

func (c *Controller) searchSettled(seq uint64, text string) {
	query := strings.TrimSpace(text)

	c.st.mu.Lock()
	if c.st.closed || seq != c.st.searchSeq {
		c.st.mu.Unlock()
		return
	}
	c.st.searchTimer = nil
	if !c.searchable(query) {
		c.sink.ShowSearch(SearchView{})
		c.st.mu.Unlock()
		return
	}
	c.st.mu.Unlock()

	users, err := c.api.SearchUsers(c.ctx, query)
	if err != nil {
		c.log.Warn("user search failed", logging.F("query", query), logging.Err(err))
		return
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	if c.st.closed || seq != c.st.searchSeq {
		c.log.Debug("dropping stale search results", logging.F("query", query))
		return
	}
	c.sink.ShowSearch(SearchResults(query, users))
}

func (c *Controller) searchable(query string) bool {
	return utf8.RuneCountInString(query) >= c.opts.MinQueryLength
}

// Search runs one query immediately, applying the same minimum length as the
// debounced search. Short queries return a closed view without a request.
func (c *Controller) Search(ctx context.Context, text string) (SearchView, error) {
	query := strings.TrimSpace(text)
	if !c.searchable(query) {
		return SearchView{}, nil
	}
	users, err := c.api.SearchUsers(ctx, query)
	if err != nil {
		return SearchView{}, fmt.Errorf("searching users: %w", err)
	}
	return SearchResults(query, users), nil
}

// DismissSearch closes the dropdown, cancels a pending query and drops
// responses still in flight. The search text is left alone.
func (c *Controller) DismissSearch() {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.resetSearch()
	c.sink.ShowSearch(SearchView{})
}

// ChooseResult opens the conversation with a searched user (the server
// reuses an existing one), selects it and clears the search. It returns the
// conversation id.
func (c *Controller) ChooseResult(ctx context.Context, userID int64, username string) (int64, error) {
	resp, err := c.api.CreateConversation(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("opening conversation: %w", err)
	}
	c.log.Info("conversation opened",
		logging.F("conversation", resp.ID),
		logging.F("user", userID),
		logging.F("created", resp.Created),
	)

	if err := c.RefreshConversations(ctx); err != nil {
		return resp.ID, err
	}
	if err := c.Select(ctx, resp.ID, username); err != nil {
		return resp.ID, err
	}

	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	c.st.resetSearch()
	c.sink.ClearSearch()
	return resp.ID, nil
}
