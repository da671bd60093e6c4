package geocode

import (
	"context"
	"sync"
	"time"
)

// DefaultQuiet is the typing pause after which a suggestion request is
// issued.
const DefaultQuiet = 400 * time.Millisecond

// SuggestFunc fetches suggestions for a query.
type SuggestFunc func(ctx context.Context, text string) []Place

// Debouncer turns a stream of keystrokes into suggestion requests. A
// request is issued only after a quiet period with no further typing, and
// every request carries a sequence number: results are delivered only if
// no newer keystroke has arrived in the meantime, so stale responses can
// never overwrite fresher suggestions.
type Debouncer struct {
	quiet   time.Duration
	suggest SuggestFunc
	deliver func(text string, places []Place)

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// NewDebouncer creates a Debouncer delivering results to deliver. A
// non-positive quiet falls back to DefaultQuiet.
func NewDebouncer(suggest SuggestFunc, quiet time.Duration, deliver func(text string, places []Place)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Debouncer{
		quiet:   quiet,
		suggest: suggest,
		deliver: deliver,
	}
}

// Debounce returns a Debouncer wired to this client's Suggest.
func (c *Client) Debounce(quiet time.Duration, deliver func(text string, places []Place)) *Debouncer {
	return NewDebouncer(c.Suggest, quiet, deliver)
}

// Type records a keystroke: the pending request (if any) is superseded
// and the quiet timer restarts for the new text.
func (d *Debouncer) Type(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.issue(seq, text)
	})
}

// Stop cancels any pending request without delivering.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) issue(seq uint64, text string) {
	d.mu.Lock()
	if seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	places := d.suggest(context.Background(), text)

	d.mu.Lock()
	current := seq == d.seq
	d.mu.Unlock()

	// Superseded while the request was in flight; drop the result.
	if !current {
		return
	}
	d.deliver(text, places)
}
