package chat

import "sync"

// state is everything the controller shares between user actions, poll ticks
// and search callbacks. Every field is guarded by mu.
//
// Each stream (messages, conversation list, search) has its own sequence
// number. A response is rendered only while its sequence number is still the
// latest issued for the stream.
type state struct {
	mu sync.Mutex

	// active is the selected conversation; zero means nothing is selected.
	active int64
	// poll is the pending poll timer of the current selection. pollGen is
	// bumped on every selection so ticks scheduled for an older selection
	// can recognise themselves.
	poll    Timer
	pollGen uint64

	messagesSeq uint64
	listSeq     uint64

	// searchTimer is the pending settle timer. searchSeq is bumped on every
	// keystroke and dismissal, so it also invalidates in-flight searches.
	searchTimer Timer
	searchSeq   uint64

	closed bool
}

// activate switches the selection to id and returns the new poll
// generation. The previous poll timer is stopped before the new selection is
// visible. Callers hold mu.
func (s *state) activate(id int64) uint64 {
	if s.poll != nil {
		s.poll.Stop()
		s.poll = nil
	}
	s.pollGen++
	s.active = id
	return s.pollGen
}

// isCurrent reports whether a poll generation still owns the selection.
// Callers hold mu.
func (s *state) isCurrent(gen uint64) bool {
	return !s.closed && gen == s.pollGen && s.active != 0
}

// resetSearch cancels the pending settle timer and invalidates in-flight
// searches. Callers hold mu.
func (s *state) resetSearch() uint64 {
	if s.searchTimer != nil {
		s.searchTimer.Stop()
		s.searchTimer = nil
	}
	s.searchSeq++
	return s.searchSeq
}

// nextMessagesSeq issues a messages sequence number for id, or reports false
// when id is not the selected conversation.
func (s *state) nextMessagesSeq(id int64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || id == 0 || id != s.active {
		return 0, false
	}
	s.messagesSeq++
	return s.messagesSeq, true
}

func (s *state) nextListSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listSeq++
	return s.listSeq
}
