package history

import "time"

// DefaultBurstWindow is the quiet period after which a burst closes.
const DefaultBurstWindow = time.Second

// Burst tracks whether an incremental edit continues the current burst or
// opens a new one. The caller records a snapshot only when Begin reports a
// new burst, so one undo reverts the whole burst.
type Burst struct {
	window time.Duration
	now    func() time.Time

	open bool
	key  string
	last time.Time
}

// NewBurst creates a tracker with the given quiet window. A nil clock uses
// time.Now.
func NewBurst(window time.Duration, now func() time.Time) *Burst {
	if window <= 0 {
		window = DefaultBurstWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Burst{window: window, now: now}
}

// Begin registers an edit to key and reports whether it opens a new burst.
// A burst continues while the same key is edited with gaps shorter than the
// window; each edit restarts the quiet period.
func (b *Burst) Begin(key string) bool {
	t := b.now()
	opens := !b.open || b.key != key || t.Sub(b.last) >= b.window
	b.open = true
	b.key = key
	b.last = t
	return opens
}

// Reset closes the current burst so the next edit opens a new one.
func (b *Burst) Reset() {
	b.open = false
	b.key = ""
}

// Window returns the quiet period.
func (b *Burst) Window() time.Duration { return b.window }
