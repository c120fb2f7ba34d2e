package chat

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/directmsg/dmc/internal/client"
)

func TestSearch_ShortQueryNeverHitsNetwork(t *testing.T) {
	h := newHarness(t)

	for _, input := range []string{"b", "  b  ", ""} {
		h.ctl.SearchInput(input)
		h.clock.Advance(DefaultSearchDelay)
		if view := h.sink.LastSearch(t); view.Open() {
			t.Errorf("input %q: dropdown should be closed, got %+v", input, view)
		}
	}
	if got := h.api.Count("search:"); got != 0 {
		t.Errorf("Expected no search requests, got %d", got)
	}
}

func TestSearch_DebouncesKeystrokes(t *testing.T) {
	h := newHarness(t)
	h.api.users = []client.User{{ID: 2, Username: "bob"}, {ID: 3, Username: "bobby"}}

	for _, input := range []string{"b", "bo", "bob"} {
		h.ctl.SearchInput(input)
		h.clock.Advance(100 * time.Millisecond)
	}
	if got := h.api.Count("search:"); got != 0 {
		t.Fatalf("Expected no request before the input settles, got %d", got)
	}

	h.clock.Advance(DefaultSearchDelay)
	h.clock.Advance(time.Second)

	if calls := h.api.Calls(); len(calls) != 1 || calls[0] != "search:bob" {
		t.Fatalf("calls = %v, want [search:bob]", calls)
	}
	view := h.sink.LastSearch(t)
	if view.Query != "bob" || len(view.Entries) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Entries[0].Initial != "B" || view.Entries[1].Username != "bobby" {
		t.Errorf("unexpected entries: %+v", view.Entries)
	}

	h.ctl.SearchInput("bobb")
	h.clock.Advance(DefaultSearchDelay)
	if got := h.api.Count("search:"); got != 2 {
		t.Errorf("Expected one request per settled window, got %d", got)
	}
}

func TestSearch_EmptyResults(t *testing.T) {
	h := newHarness(t)

	h.ctl.SearchInput("zz")
	h.clock.Advance(DefaultSearchDelay)

	view := h.sink.LastSearch(t)
	if !view.Empty() {
		t.Errorf("Expected an empty-result dropdown, got %+v", view)
	}
}

func TestSearch_OutOfOrderResponseIsDropped(t *testing.T) {
	h := newHarness(t)
	h.api.users = []client.User{{ID: 2, Username: "bob"}, {ID: 3, Username: "bobby"}}
	gate := make(chan struct{})
	h.api.searchGate["bo"] = gate

	h.ctl.SearchInput("bo")
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.clock.Advance(DefaultSearchDelay)
	}()
	<-h.api.searchEntered

	h.ctl.SearchInput("bobby")
	h.clock.Advance(DefaultSearchDelay)
	close(gate)
	waitDone(t, done)

	view := h.sink.LastSearch(t)
	if view.Query != "bobby" || len(view.Entries) != 1 {
		t.Errorf("late response for an earlier query replaced the dropdown: %+v", view)
	}
}

func TestSearch_ErrorsAreSwallowed(t *testing.T) {
	h := newHarness(t)
	h.api.searchErr = errors.New("boom")

	h.ctl.SearchInput("bob")
	h.clock.Advance(DefaultSearchDelay)

	if got := h.api.Count("search:"); got != 1 {
		t.Errorf("Expected one request, got %d", got)
	}
	if len(h.sink.searches) != 0 {
		t.Errorf("a failed search must leave the dropdown alone, got %+v", h.sink.searches)
	}
}

func TestDismissSearch_CancelsPendingQuery(t *testing.T) {
	h := newHarness(t)

	h.ctl.SearchInput("bob")
	h.ctl.DismissSearch()
	h.clock.Advance(time.Second)

	if got := h.api.Count("search:"); got != 0 {
		t.Errorf("Expected the pending query to be cancelled, got %d requests", got)
	}
	if view := h.sink.LastSearch(t); view.Open() {
		t.Errorf("dropdown should be closed, got %+v", view)
	}
}

func TestDismissSearch_DropsInFlightResponse(t *testing.T) {
	h := newHarness(t)
	h.api.users = []client.User{{ID: 2, Username: "bob"}}
	gate := make(chan struct{})
	h.api.searchGate["bob"] = gate

	h.ctl.SearchInput("bob")
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.clock.Advance(DefaultSearchDelay)
	}()
	<-h.api.searchEntered

	h.ctl.DismissSearch()
	close(gate)
	waitDone(t, done)

	if view := h.sink.LastSearch(t); view.Open() {
		t.Errorf("dismissed dropdown was reopened: %+v", view)
	}
}

func TestChooseResult(t *testing.T) {
	h := newHarness(t)
	h.api.users = []client.User{{ID: 2, Username: "bob"}}
	ctx := context.Background()

	id, err := h.ctl.ChooseResult(ctx, 2, "bob")
	if err != nil {
		t.Fatalf("ChooseResult() error: %v", err)
	}
	want := []string{"create:2", "list", "messages:" + itoa(id), "read:" + itoa(id), "list"}
	if got := h.api.Calls(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if active, ok := h.ctl.Active(); !ok || active != id {
		t.Errorf("Active() = %d, %v; want %d", active, ok, id)
	}
	if h.sink.searchCleared != 1 {
		t.Errorf("search cleared %d times, want 1", h.sink.searchCleared)
	}
	if got := h.sink.titles[len(h.sink.titles)-1]; got != "bob" {
		t.Errorf("title = %q", got)
	}

	// The server reuses the conversation on the second attempt.
	again, err := h.ctl.ChooseResult(ctx, 2, "bob")
	if err != nil || again != id {
		t.Errorf("second ChooseResult() = %d, %v; want %d", again, err, id)
	}
}

func TestSearch_Immediate(t *testing.T) {
	h := newHarness(t)
	h.api.users = []client.User{{ID: 2, Username: "bob"}}
	ctx := context.Background()

	view, err := h.ctl.Search(ctx, "b")
	if err != nil || view.Open() {
		t.Errorf("short Search() = %+v, %v", view, err)
	}
	view, err = h.ctl.Search(ctx, " bob ")
	if err != nil || len(view.Entries) != 1 {
		t.Errorf("Search() = %+v, %v", view, err)
	}
	if calls := h.api.Calls(); len(calls) != 1 || calls[0] != "search:bob" {
		t.Errorf("calls = %v", calls)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
