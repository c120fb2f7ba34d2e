package chat

import (
	"fmt"

	"github.com/directmsg/dmc/internal/client"
	"github.com/directmsg/dmc/internal/render"
)

// UnknownUser is the display name of a conversation whose counterpart the
// server could not resolve.
const UnknownUser = "Unknown"

// NoResultsText is the entry shown when a search matched nobody.
const NoResultsText = "No users found"

// Sink receives view descriptions. Implementations draw them; they must not
// call back into the Controller.
type Sink interface {
	// ShowConversations replaces the whole conversation list.
	ShowConversations(rows []ConversationRow)
	// ShowTitle sets the heading of the thread pane.
	ShowTitle(title string)
	// ShowThread replaces the whole message thread.
	ShowThread(thread ThreadView)
	// ShowSearch replaces the search dropdown. A zero SearchView closes it.
	ShowSearch(view SearchView)
	// ClearComposer empties the message input after a successful send.
	ClearComposer()
	// ClearSearch empties the search field and closes the dropdown.
	ClearSearch()
	// SetSending reports whether a send is in flight.
	SetSending(sending bool)
}

// ConversationRow is one entry of the conversation list.
type ConversationRow struct {
	ID      int64
	Name    string
	Preview string
	Unread  int
}

// ShowBadge reports whether the unread badge is drawn.
func (r ConversationRow) ShowBadge() bool {
	return r.Unread > 0
}

// ConversationRows builds list rows in the order the server returned them.
func ConversationRows(convs []client.Conversation) []ConversationRow {
	rows := make([]ConversationRow, 0, len(convs))
	for _, c := range convs {
		row := ConversationRow{ID: c.ID, Name: UnknownUser, Unread: c.UnreadCount}
		if c.OtherUser != nil && c.OtherUser.Username != "" {
			row.Name = render.SingleLine(c.OtherUser.Username)
		}
		if c.LastMessage != nil {
			row.Preview = render.SingleLine(c.LastMessage.Body)
		}
		rows = append(rows, row)
	}
	return rows
}

// ThreadLine is one rendered message.
type ThreadLine struct {
	ID        int64
	Sender    string
	Body      string
	CreatedAt string
	// Mine marks messages sent by the signed-in user.
	Mine bool
}

// Meta is the "sender • time" caption under a message.
func (l ThreadLine) Meta() string {
	return l.Sender + " • " + l.CreatedAt
}

// ThreadView is the message thread of one conversation, oldest first.
type ThreadView struct {
	ConversationID int64
	Lines          []ThreadLine
}

// Thread builds the thread view from a newest-first server page. Bodies are
// sanitized and their URLs turned into terminal hyperlinks.
func Thread(conversationID int64, newestFirst []client.Message, me string) ThreadView {
	lines := make([]ThreadLine, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		line := ThreadLine{
			ID:        m.ID,
			Body:      render.Linkify(m.Body),
			CreatedAt: render.SingleLine(m.CreatedAt),
		}
		if m.Sender != nil {
			line.Sender = render.SingleLine(m.Sender.Username)
			line.Mine = me != "" && m.Sender.Username == me
		}
		lines = append(lines, line)
	}
	return ThreadView{ConversationID: conversationID, Lines: lines}
}

// Title is the thread heading: the counterpart's name, or the id when the
// name is unknown.
func Title(conversationID int64, name string) string {
	if name != "" {
		return render.SingleLine(name)
	}
	return fmt.Sprintf("Conversation #%d", conversationID)
}

// SearchEntry is one user in the search dropdown.
type SearchEntry struct {
	UserID   int64
	Username string
	Initial  string
}

// SearchView is the search dropdown. The zero value is a closed dropdown.
type SearchView struct {
	Query   string
	Entries []SearchEntry
}

// Open reports whether the dropdown is shown.
func (v SearchView) Open() bool {
	return v.Query != ""
}

// Empty reports whether the dropdown is shown with no matches, in which case
// NoResultsText is drawn instead of entries.
func (v SearchView) Empty() bool {
	return v.Open() && len(v.Entries) == 0
}

// SearchResults builds the dropdown for a resolved query.
func SearchResults(query string, users []client.User) SearchView {
	entries := make([]SearchEntry, 0, len(users))
	for _, u := range users {
		name := render.SingleLine(u.Username)
		entries = append(entries, SearchEntry{UserID: u.ID, Username: name, Initial: render.Initial(name)})
	}
	return SearchView{Query: query, Entries: entries}
}
