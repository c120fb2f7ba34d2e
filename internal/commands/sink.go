package commands

import (
	"sync"

	"github.com/directmsg/dmc/internal/chat"
)

// cliSink keeps the latest view of each pane for the one-shot commands.
// onThread, when set, sees every thread the controller draws.
type cliSink struct {
	mu       sync.Mutex
	rows     []chat.ConversationRow
	title    string
	thread   chat.ThreadView
	search   chat.SearchView
	onThread func(chat.ThreadView)
}

var _ chat.Sink = (*cliSink)(nil)

func (s *cliSink) ShowConversations(rows []chat.ConversationRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = rows
}

func (s *cliSink) ShowTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *cliSink) ShowThread(thread chat.ThreadView) {
	s.mu.Lock()
	s.thread = thread
	fn := s.onThread
	s.mu.Unlock()
	if fn != nil {
		fn(thread)
	}
}

func (s *cliSink) ShowSearch(view chat.SearchView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = view
}

func (s *cliSink) ClearComposer() {}

func (s *cliSink) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = chat.SearchView{}
}

func (s *cliSink) SetSending(bool) {}

func (s *cliSink) Rows() []chat.ConversationRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

func (s *cliSink) Thread() (string, chat.ThreadView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title, s.thread
}
