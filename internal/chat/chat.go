// Package chat keeps the conversation list and the open thread in step with
// the server.
//
// A Controller owns the selection, the poll loop that follows it, the send
// guard and the debounced user search. It talks to the server through API and
// describes what to draw through Sink, so the same controller drives the
// terminal UI and the headless commands.
//
// Responses can resolve out of order. Every stream carries a sequence number
// and only the latest response of a stream is drawn; a messages response is
// also dropped once its conversation is no longer selected, and a dropped
// response never marks the conversation read.
package chat

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/directmsg/dmc/internal/client"
	"github.com/directmsg/dmc/internal/logging"
)

const (
	DefaultPollInterval   = 2500 * time.Millisecond
	DefaultSearchDelay    = 250 * time.Millisecond
	DefaultMinQueryLength = 2
	// MaxBodyLength matches the server's limit on message bodies.
	MaxBodyLength = 5000
)

// API is the part of the server the controller uses. *client.Client
// implements it.
type API interface {
	ListConversations(ctx context.Context) ([]client.Conversation, error)
	ListMessages(ctx context.Context, conversationID int64) (*client.MessagePage, error)
	SendMessage(ctx context.Context, conversationID int64, body string) (*client.Message, error)
	MarkRead(ctx context.Context, conversationID int64, readAt *time.Time) (*client.MarkReadResponse, error)
	CreateConversation(ctx context.Context, otherUserID int64) (*client.CreateConversationResponse, error)
	SearchUsers(ctx context.Context, query string) ([]client.User, error)
}

var _ API = (*client.Client)(nil)

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	// Me is the signed-in username, used to tell own messages apart.
	Me             string
	PollInterval   time.Duration
	SearchDelay    time.Duration
	MinQueryLength int
	Clock          Clock
	Logger         logging.Logger
}

// Controller coordinates selection, polling, sending and search.
type Controller struct {
	api  API
	sink Sink
	opts Options
	log  logging.Logger

	st      state
	sending *semaphore.Weighted

	// ctx scopes requests started by timers; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Controller. Nothing is fetched until Start or Select.
func New(api API, sink Sink, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = DefaultSearchDelay
	}
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		api:     api,
		sink:    sink,
		opts:    opts,
		log:     opts.Logger,
		sending: semaphore.NewWeighted(1),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start performs the initial conversation list load.
func (c *Controller) Start(ctx context.Context) error {
	return c.RefreshConversations(ctx)
}

// Me returns the signed-in username the controller was configured with.
func (c *Controller) Me() string {
	return c.opts.Me
}

// Active returns the selected conversation.
func (c *Controller) Active() (int64, bool) {
	c.st.mu.Lock()
	defer c.st.mu.Unlock()
	return c.st.active, c.st.active != 0
}

// Close stops the poll loop and any pending search, and cancels requests
// started by them. Later responses are not drawn.
func (c *Controller) Close() {
	c.st.mu.Lock()
	c.st.closed = true
	if c.st.poll != nil {
		c.st.poll.Stop()
		c.st.poll = nil
	}
	c.st.pollGen++
	c.st.resetSearch()
	c.st.mu.Unlock()
	c.cancel()
}
