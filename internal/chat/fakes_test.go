package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/directmsg/dmc/internal/client"
)

// fakeClock fires timers only when Advance is called, on the calling
// goroutine.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward by d, running every timer that falls due,
// including timers armed by callbacks along the way.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()
	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.fired || t.stopped || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			if c.now < target {
				c.now = target
			}
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at > c.now {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// Pending counts timers that have neither fired nor been stopped.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// fakeAPI is an in-memory server. Every call is recorded as a short string
// such as "messages:42" or "send:42:hello".
type fakeAPI struct {
	mu            sync.Mutex
	conversations []client.Conversation
	messages      map[int64][]client.Message
	users         []client.User
	nextID        int64

	calls []string

	listErr     error
	messagesErr error
	sendErr     error
	searchErr   error

	// Gates block a call until closed; the matching entered channel is
	// signalled when the call arrives.
	messagesGate    map[int64]chan struct{}
	messagesEntered chan int64
	sendGate        chan struct{}
	sendEntered     chan struct{}
	searchGate      map[string]chan struct{}
	searchEntered   chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		messages:        map[int64][]client.Message{},
		messagesGate:    map[int64]chan struct{}{},
		messagesEntered: make(chan int64, 16),
		sendEntered:     make(chan struct{}, 16),
		searchGate:      map[string]chan struct{}{},
		searchEntered:   make(chan string, 16),
		nextID:          100,
	}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

// Calls returns the calls recorded so far.
func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Count counts recorded calls starting with prefix.
func (f *fakeAPI) Count(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ResetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) ListConversations(ctx context.Context) ([]client.Conversation, error) {
	f.record("list")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]client.Conversation(nil), f.conversations...), nil
}

func (f *fakeAPI) ListMessages(ctx context.Context, id int64) (*client.MessagePage, error) {
	f.record(fmt.Sprintf("messages:%d", id))
	// The response is fixed when the request arrives, even if it is held
	// back by a gate.
	f.mu.Lock()
	gate := f.messagesGate[id]
	err := f.messagesErr
	msgs := append([]client.Message(nil), f.messages[id]...)
	f.mu.Unlock()
	if gate != nil {
		f.messagesEntered <- id
		<-gate
	}
	if err != nil {
		return nil, err
	}
	// Newest first, as the server returns them.
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].ID > msgs[j].ID })
	return &client.MessagePage{Results: msgs}, nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, id int64, body string) (*client.Message, error) {
	f.record(fmt.Sprintf("send:%d:%s", id, body))
	f.mu.Lock()
	gate := f.sendGate
	err := f.sendErr
	f.mu.Unlock()
	if gate != nil {
		f.sendEntered <- struct{}{}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg := client.Message{ID: f.nextID, Conversation: id, Sender: &client.User{ID: 1, Username: "alice"}, Body: body}
	f.messages[id] = append(f.messages[id], msg)
	return &msg, nil
}

func (f *fakeAPI) MarkRead(ctx context.Context, id int64, readAt *time.Time) (*client.MarkReadResponse, error) {
	f.record(fmt.Sprintf("read:%d", id))
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.conversations {
		if f.conversations[i].ID == id {
			f.conversations[i].UnreadCount = 0
		}
	}
	return &client.MarkReadResponse{OK: true}, nil
}

func (f *fakeAPI) CreateConversation(ctx context.Context, otherUserID int64) (*client.CreateConversationResponse, error) {
	f.record(fmt.Sprintf("create:%d", otherUserID))
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversations {
		if c.OtherUser != nil && c.OtherUser.ID == otherUserID {
			return &client.CreateConversationResponse{ID: c.ID}, nil
		}
	}
	f.nextID++
	var other *client.User
	for _, u := range f.users {
		if u.ID == otherUserID {
			u := u
			other = &u
		}
	}
	f.conversations = append([]client.Conversation{{ID: f.nextID, OtherUser: other}}, f.conversations...)
	return &client.CreateConversationResponse{ID: f.nextID, Created: true}, nil
}

func (f *fakeAPI) SearchUsers(ctx context.Context, query string) ([]client.User, error) {
	f.record("search:" + query)
	f.mu.Lock()
	gate := f.searchGate[query]
	err := f.searchErr
	var out []client.User
	for _, u := range f.users {
		if strings.Contains(u.Username, query) {
			out = append(out, u)
		}
	}
	f.mu.Unlock()
	if gate != nil {
		f.searchEntered <- query
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// recordingSink keeps every view it is handed.
type recordingSink struct {
	mu              sync.Mutex
	lists           [][]ConversationRow
	titles          []string
	threads         []ThreadView
	searches        []SearchView
	composerCleared int
	searchCleared   int
	sending         []bool
}

func (s *recordingSink) ShowConversations(rows []ConversationRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, rows)
}

func (s *recordingSink) ShowTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles = append(s.titles, title)
}

func (s *recordingSink) ShowThread(thread ThreadView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threads = append(s.threads, thread)
}

func (s *recordingSink) ShowSearch(view SearchView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, view)
}

func (s *recordingSink) ClearComposer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composerCleared++
}

func (s *recordingSink) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchCleared++
}

func (s *recordingSink) SetSending(sending bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = append(s.sending, sending)
}

func (s *recordingSink) LastList(t *testing.T) []ConversationRow {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lists) == 0 {
		t.Fatal("no conversation list was drawn")
	}
	return s.lists[len(s.lists)-1]
}

func (s *recordingSink) LastThread(t *testing.T) ThreadView {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.threads) == 0 {
		t.Fatal("no thread was drawn")
	}
	return s.threads[len(s.threads)-1]
}

func (s *recordingSink) LastSearch(t *testing.T) SearchView {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.searches) == 0 {
		t.Fatal("no search view was drawn")
	}
	return s.searches[len(s.searches)-1]
}

func (s *recordingSink) Threads() []ThreadView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ThreadView(nil), s.threads...)
}

type harness struct {
	api   *fakeAPI
	sink  *recordingSink
	clock *fakeClock
	ctl   *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{api: newFakeAPI(), sink: &recordingSink{}, clock: &fakeClock{}}
	h.ctl = New(h.api, h.sink, Options{Me: "alice", Clock: h.clock})
	t.Cleanup(h.ctl.Close)
	return h
}

func user(id int64, name string) *client.User {
	return &client.User{ID: id, Username: name}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for background call")
	}
}
