package chat

import (
	"testing"

	"github.com/directmsg/dmc/internal/client"
)

func TestThread_ReversesServerOrder(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
	}{
		{"empty", nil},
		{"single", []int64{1}},
		{"several", []int64{9, 4, 7, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page []client.Message
			for _, id := range tt.ids {
				page = append(page, client.Message{ID: id})
			}
			lines := Thread(1, page, "alice").Lines
			if len(lines) != len(tt.ids) {
				t.Fatalf("Expected %d lines, got %d", len(tt.ids), len(lines))
			}
			for i, line := range lines {
				if want := tt.ids[len(tt.ids)-1-i]; line.ID != want {
					t.Errorf("line %d = %d, want %d", i, line.ID, want)
				}
			}
		})
	}
}

func TestThread_EscapesBodies(t *testing.T) {
	page := []client.Message{{
		ID:        1,
		Sender:    &client.User{Username: "mallory\x1b[2J"},
		Body:      "\x1b[31mhi\x1b[0m",
		CreatedAt: "2025-01-01T00:00:00Z",
	}}
	line := Thread(1, page, "").Lines[0]
	if line.Body != "hi" {
		t.Errorf("Body = %q", line.Body)
	}
	if line.Sender != "mallory" {
		t.Errorf("Sender = %q", line.Sender)
	}
	if line.Mine {
		t.Error("nothing is mine without a known identity")
	}
}

func TestThread_MissingSender(t *testing.T) {
	line := Thread(1, []client.Message{{ID: 1, Body: "x", CreatedAt: "t"}}, "alice").Lines[0]
	if line.Sender != "" || line.Mine {
		t.Errorf("unexpected line: %+v", line)
	}
	if got := line.Meta(); got != " • t" {
		t.Errorf("Meta() = %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title(3, "bob"); got != "bob" {
		t.Errorf("Title() = %q", got)
	}
	if got := Title(3, ""); got != "Conversation #3" {
		t.Errorf("Title() = %q", got)
	}
}

func TestSearchView(t *testing.T) {
	var closed SearchView
	if closed.Open() || closed.Empty() {
		t.Error("zero view must be closed")
	}
	empty := SearchResults("zz", nil)
	if !empty.Open() || !empty.Empty() {
		t.Errorf("Expected an open, empty view: %+v", empty)
	}
	full := SearchResults("bo", []client.User{{ID: 2, Username: "bob"}})
	if full.Empty() || full.Entries[0] != (SearchEntry{UserID: 2, Username: "bob", Initial: "B"}) {
		t.Errorf("unexpected view: %+v", full)
	}
}
