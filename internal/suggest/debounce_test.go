package suggest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"songlog/internal/search"
)

// recorder collects callback deliveries for assertions.
type recorder struct {
	mu      sync.Mutex
	results map[Channel][][]search.Candidate
	errs    []error
}

func newRecorder() *recorder {
	return &recorder{results: make(map[Channel][][]search.Candidate)}
}

func (r *recorder) onResults(ch Channel, c []search.Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[ch] = append(r.results[ch], c)
}

func (r *recorder) onError(ch Channel, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) deliveries(ch Channel) [][]search.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]search.Candidate, len(r.results[ch]))
	copy(out, r.results[ch])
	return out
}

func TestSchedule_OnlyLastCallFires(t *testing.T) {
	var mu sync.Mutex
	var fetched []string
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		mu.Lock()
		fetched = append(fetched, value)
		mu.Unlock()
		return []search.Candidate{{ID: "1", Title: value}}, nil
	}

	rec := newRecorder()
	d := New(fetch, 30*time.Millisecond, rec.onResults, rec.onError)

	ctx := context.Background()
	d.Schedule(ctx, ChannelArtist, "a")
	d.Schedule(ctx, ChannelArtist, "ag")
	d.Schedule(ctx, ChannelArtist, "ag c")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fetched) != 1 {
		t.Fatalf("expected exactly 1 fetch, got %d: %v", len(fetched), fetched)
	}
	if fetched[0] != "ag c" {
		t.Errorf("fetched %q, want %q", fetched[0], "ag c")
	}

	got := rec.deliveries(ChannelArtist)
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0][0].Title != "ag c" {
		t.Errorf("delivered %q, want %q", got[0][0].Title, "ag c")
	}
}

func TestSchedule_BlankClearsSynchronously(t *testing.T) {
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		t.Error("fetch must not run for blank input")
		return nil, nil
	}

	rec := newRecorder()
	d := New(fetch, time.Hour, rec.onResults, rec.onError)

	// The hour-long window guarantees the clear did not wait for a timer.
	d.Schedule(context.Background(), ChannelSong, "   ")

	got := rec.deliveries(ChannelSong)
	if len(got) != 1 {
		t.Fatalf("expected immediate clear delivery, got %d", len(got))
	}
	if len(got[0]) != 0 {
		t.Errorf("expected empty suggestion list, got %v", got[0])
	}
}

func TestSchedule_BlankCancelsPending(t *testing.T) {
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		t.Errorf("fetch ran for superseded value %q", value)
		return nil, nil
	}

	rec := newRecorder()
	d := New(fetch, 30*time.Millisecond, rec.onResults, rec.onError)

	ctx := context.Background()
	d.Schedule(ctx, ChannelAlbum, "pop")
	d.Schedule(ctx, ChannelAlbum, "")

	time.Sleep(100 * time.Millisecond)

	if got := rec.deliveries(ChannelAlbum); len(got) != 1 {
		t.Fatalf("expected only the clear delivery, got %d", len(got))
	}
}

func TestSchedule_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		if value == "slow" {
			<-release
		}
		return []search.Candidate{{Title: value}}, nil
	}

	rec := newRecorder()
	d := New(fetch, 10*time.Millisecond, rec.onResults, rec.onError)

	ctx := context.Background()
	d.Schedule(ctx, ChannelSong, "slow")
	time.Sleep(50 * time.Millisecond) // let the slow fetch start

	d.Schedule(ctx, ChannelSong, "fresh")
	time.Sleep(50 * time.Millisecond)
	close(release) // slow fetch completes after fresh already delivered
	time.Sleep(50 * time.Millisecond)

	got := rec.deliveries(ChannelSong)
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0][0].Title != "fresh" {
		t.Errorf("delivered %q, want the fresher value", got[0][0].Title)
	}
}

func TestSchedule_FetchErrorKeepsLastGoodValue(t *testing.T) {
	var fail atomic.Bool
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		if fail.Load() {
			return nil, errors.New("provider down")
		}
		return []search.Candidate{{Title: value}}, nil
	}

	rec := newRecorder()
	d := New(fetch, 10*time.Millisecond, rec.onResults, rec.onError)

	ctx := context.Background()
	d.Schedule(ctx, ChannelArtist, "good")
	time.Sleep(60 * time.Millisecond)

	fail.Store(true)
	d.Schedule(ctx, ChannelArtist, "bad")
	time.Sleep(60 * time.Millisecond)

	got := rec.deliveries(ChannelArtist)
	if len(got) != 1 || got[0][0].Title != "good" {
		t.Fatalf("failure must not alter delivered results, got %v", got)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.errs) != 1 {
		t.Fatalf("expected 1 error observation, got %d", len(rec.errs))
	}
}

func TestSchedule_ChannelsAreIndependent(t *testing.T) {
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		return []search.Candidate{{Title: value}}, nil
	}

	rec := newRecorder()
	d := New(fetch, 10*time.Millisecond, rec.onResults, rec.onError)

	ctx := context.Background()
	d.Schedule(ctx, ChannelSong, "song query")
	d.Schedule(ctx, ChannelArtist, "artist query")
	d.Schedule(ctx, ChannelAlbum, "album query")

	time.Sleep(80 * time.Millisecond)

	for ch, want := range map[Channel]string{
		ChannelSong:   "song query",
		ChannelArtist: "artist query",
		ChannelAlbum:  "album query",
	} {
		got := rec.deliveries(ch)
		if len(got) != 1 || got[0][0].Title != want {
			t.Errorf("channel %s: got %v, want one delivery of %q", ch, got, want)
		}
	}
}

func TestStop_CancelsPendingTimers(t *testing.T) {
	fetch := func(ctx context.Context, ch Channel, value string) ([]search.Candidate, error) {
		t.Error("fetch must not run after Stop")
		return nil, nil
	}

	rec := newRecorder()
	d := New(fetch, 20*time.Millisecond, rec.onResults, rec.onError)

	d.Schedule(context.Background(), ChannelSong, "pending")
	d.Stop()

	time.Sleep(80 * time.Millisecond)

	if got := rec.deliveries(ChannelSong); len(got) != 0 {
		t.Errorf("expected no deliveries after Stop, got %d", len(got))
	}
}
