package chat

import "time"

// Timer is a handle to a pending callback.
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Clock starts cancellable one-shot timers. The poll loop and the search
// settle delay are both built on it.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock runs callbacks on the runtime timer goroutines.
type SystemClock struct{}

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
