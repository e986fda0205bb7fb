// Package suggest rate-limits per-keystroke suggestion lookups so that
// only the most recent input for a field reaches the metadata provider.
package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"songlog/internal/search"
)

// Channel identifies one independently debounced suggestion stream.
// The three channels run independent timers and may have in-flight
// requests simultaneously.
type Channel string

const (
	ChannelSong   Channel = "song"
	ChannelArtist Channel = "artist"
	ChannelAlbum  Channel = "album"
)

// Valid reports whether c is a known suggestion channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelSong, ChannelArtist, ChannelAlbum:
		return true
	}
	return false
}

// DefaultWindow is the quiet period after the last keystroke before a
// suggestion request fires.
const DefaultWindow = 300 * time.Millisecond

// FetchFunc performs the underlying suggestion lookup for a channel.
type FetchFunc func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error)

// Debouncer wraps a FetchFunc so that only the last Schedule call for a
// channel within the quiet window executes. Results reach the results
// callback in issue order: every Schedule call bumps the channel's
// sequence number, and a completed fetch is discarded unless its
// sequence number is still the latest, so a slow stale response can
// never overwrite a fresher one.
//
// A fetch failure goes to the error callback and leaves the channel's
// last delivered results untouched. No retry is attempted.
//
// Callbacks run on timer goroutines and may fire concurrently for
// different channels; they must be safe for concurrent use.
type Debouncer struct {
	fetch     FetchFunc
	window    time.Duration
	onResults func(Channel, []search.Candidate)
	onError   func(Channel, error)

	mu       sync.Mutex
	channels map[Channel]*channelState
}

// channelState is the per-channel debounce state: the armed timer, if
// any, and the latest issued sequence number.
type channelState struct {
	timer *time.Timer
	seq   uint64
}

// New creates a Debouncer. A window of 0 uses DefaultWindow; onError
// may be nil.
func New(fetch FetchFunc, window time.Duration, onResults func(Channel, []search.Candidate), onError func(Channel, error)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		fetch:     fetch,
		window:    window,
		onResults: onResults,
		onError:   onError,
		channels:  make(map[Channel]*channelState),
	}
}

// Schedule records value as the latest input for ch. The previous
// pending timer for the channel, if any, is cancelled before a new one
// is armed. A blank value clears the channel synchronously, bypassing
// the timer, and issues no request.
func (d *Debouncer) Schedule(ctx context.Context, ch Channel, value string) {
	d.mu.Lock()
	st := d.channels[ch]
	if st == nil {
		st = &channelState{}
		d.channels[ch] = st
	}
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.seq++
	seq := st.seq

	if strings.TrimSpace(value) == "" {
		d.mu.Unlock()
		d.onResults(ch, nil)
		return
	}

	st.timer = time.AfterFunc(d.window, func() {
		d.run(ctx, ch, seq, value)
	})
	d.mu.Unlock()
}

// Stop cancels every pending timer and invalidates in-flight fetches.
// Already running fetches are not interrupted; their results fail the
// sequence check and never surface.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, st := range d.channels {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		st.seq++
	}
}

func (d *Debouncer) run(ctx context.Context, ch Channel, seq uint64, value string) {
	results, err := d.fetch(ctx, ch, value)

	d.mu.Lock()
	st := d.channels[ch]
	stale := st == nil || st.seq != seq
	d.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		if d.onError != nil {
			d.onError(ch, err)
		}
		return
	}
	d.onResults(ch, results)
}
