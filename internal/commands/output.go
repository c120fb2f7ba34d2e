package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// renderJSON is the --json form of every command. Message bodies are printed
// as the users typed them, so <, > and & are not escaped. A value that cannot
// be encoded still yields a JSON object naming the failure.
func renderJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		buf.Reset()
		_ = enc.Encode(map[string]string{"error": fmt.Sprintf("encoding output: %v", err)})
	}
	return buf.String()
}

// messageAge labels a message's created_at relative to now: recent messages
// get a relative age, older ones a clock time or date in now's zone. An
// unparseable timestamp is shown as sent.
func messageAge(createdAt string, now time.Time) string {
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return createdAt
	}
	ts = ts.In(now.Location())
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	}

	y, m, day := now.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, now.Location())
	switch {
	case !ts.Before(midnight):
		return ts.Format("15:04")
	case !ts.Before(midnight.AddDate(0, 0, -1)):
		return "yesterday " + ts.Format("15:04")
	case !ts.Before(midnight.AddDate(0, 0, -6)):
		return ts.Format("Mon 15:04")
	case ts.Year() == now.Year():
		return ts.Format("Jan 2")
	}
	return ts.Format("Jan 2, 2006")
}
