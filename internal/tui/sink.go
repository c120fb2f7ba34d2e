package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/directmsg/dmc/internal/chat"
)

type conversationsMsg struct{ rows []chat.ConversationRow }

type titleMsg struct{ title string }

type threadMsg struct{ thread chat.ThreadView }

type searchMsg struct{ view chat.SearchView }

type composerClearedMsg struct{}

type searchClearedMsg struct{}

type sendingMsg struct{ sending bool }

// inbox carries view updates from the controller to the program. push never
// blocks, so the controller can draw while holding its own lock without
// waiting on Update.
type inbox struct {
	mu    sync.Mutex
	msgs  []tea.Msg
	ready chan struct{}
}

func newInbox() *inbox {
	return &inbox{ready: make(chan struct{}, 1)}
}

func (b *inbox) push(msg tea.Msg) {
	b.mu.Lock()
	b.msgs = append(b.msgs, msg)
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

// wait returns a command that delivers the next queued update. Update
// re-arms it after every delivery, so updates arrive in order.
func (b *inbox) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			b.mu.Lock()
			if len(b.msgs) > 0 {
				msg := b.msgs[0]
				b.msgs[0] = nil
				b.msgs = b.msgs[1:]
				b.mu.Unlock()
				return msg
			}
			b.mu.Unlock()
			<-b.ready
		}
	}
}

// sink implements chat.Sink on top of an inbox.
type sink struct{ box *inbox }

var _ chat.Sink = sink{}

func (s sink) ShowConversations(rows []chat.ConversationRow) {
	s.box.push(conversationsMsg{rows: rows})
}

func (s sink) ShowTitle(title string) { s.box.push(titleMsg{title: title}) }

func (s sink) ShowThread(thread chat.ThreadView) { s.box.push(threadMsg{thread: thread}) }

func (s sink) ShowSearch(view chat.SearchView) { s.box.push(searchMsg{view: view}) }

func (s sink) ClearComposer() { s.box.push(composerClearedMsg{}) }

func (s sink) ClearSearch() { s.box.push(searchClearedMsg{}) }

func (s sink) SetSending(sending bool) { s.box.push(sendingMsg{sending: sending}) }
