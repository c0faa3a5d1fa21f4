package feed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/feed"
	"github.com/work-near-me/client/internal/location"
)

// pendingSearch is one in-flight call against the gated searcher. The test
// completes it by sending on release (nil means "fail the search").
type pendingSearch struct {
	pos     domain.Position
	radius  float64
	release chan *feed.Result
}

// gatedSearcher blocks every Search call until the test releases it, which
// lets tests deliver responses out of order.
type gatedSearcher struct {
	started chan *pendingSearch
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{started: make(chan *pendingSearch, 16)}
}

func (g *gatedSearcher) Search(ctx context.Context, pos domain.Position, radiusKm float64) (*feed.Result, error) {
	p := &pendingSearch{pos: pos, radius: radiusKm, release: make(chan *feed.Result)}
	g.started <- p
	res := <-p.release
	if res == nil {
		return nil, errors.New("search failed")
	}
	return res, nil
}

func (g *gatedSearcher) next(t *testing.T) *pendingSearch {
	t.Helper()
	select {
	case p := <-g.started:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("expected a search to be issued")
		return nil
	}
}

func resultWith(p *pendingSearch, titles ...string) *feed.Result {
	jobs := make([]domain.JobWithDistance, len(titles))
	for i, title := range titles {
		jobs[i] = domain.JobWithDistance{
			Job:      domain.Job{ID: uuid.New(), Title: title},
			Distance: float64(i),
		}
	}
	return &feed.Result{Position: p.pos, RadiusKm: p.radius, Jobs: jobs}
}

func newController(searcher feed.Searcher) *feed.Controller {
	resolver := location.NewResolver(nil, zerolog.Nop())
	return feed.NewController(searcher, resolver, zerolog.Nop())
}

// waitFor drains snapshots until pred matches.
func waitFor(t *testing.T, snaps <-chan feed.Snapshot, pred func(feed.Snapshot) bool) feed.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-snaps:
			if pred(s) {
				return s
			}
		case <-deadline:
			t.Fatal("expected snapshot never arrived")
		}
	}
}

func TestController_StartUsesFallbackPositionAndSearches(t *testing.T) {
	searcher := newGatedSearcher()
	ctrl := newController(searcher)

	ctrl.Start(context.Background())

	p := searcher.next(t)
	// Geolocation is unavailable (nil provider): the search still goes out,
	// carrying the fallback position and the default radius.
	assert.Equal(t, location.Fallback, p.pos)
	assert.Equal(t, feed.DefaultRadiusKm, p.radius)
	p.release <- resultWith(p, "first")

	snaps := make(chan feed.Snapshot, 16)
	unsub := ctrl.Subscribe(func(s feed.Snapshot) { snaps <- s })
	defer unsub()
	ctrl.Refresh(context.Background())
	p = searcher.next(t)
	p.release <- resultWith(p, "second")

	snap := waitFor(t, snaps, func(s feed.Snapshot) bool { return !s.Loading && len(s.Jobs) == 1 })
	assert.Equal(t, "second", snap.Jobs[0].Title)
	assert.Equal(t, location.Fallback, snap.Position)
}

func TestController_LastRequestWins(t *testing.T) {
	searcher := newGatedSearcher()
	ctrl := newController(searcher)

	snaps := make(chan feed.Snapshot, 64)
	unsub := ctrl.Subscribe(func(s feed.Snapshot) { snaps <- s })
	defer unsub()

	ctx := context.Background()
	ctrl.Start(ctx)
	p1 := searcher.next(t) // radius 3 (default)

	// Slider moved 3 → 0.5 → 5 in rapid succession: three searches total.
	ctrl.SetRadius(ctx, 0.5)
	p2 := searcher.next(t)
	ctrl.SetRadius(ctx, 5)
	p3 := searcher.next(t)

	assert.Equal(t, 3.0, p1.radius)
	assert.Equal(t, 0.5, p2.radius)
	assert.Equal(t, 5.0, p3.radius)

	// Responses arrive out of order: newest first, then the stale ones.
	p3.release <- resultWith(p3, "radius-5 job")
	snap := waitFor(t, snaps, func(s feed.Snapshot) bool { return !s.Loading && len(s.Jobs) == 1 })
	assert.Equal(t, "radius-5 job", snap.Jobs[0].Title)

	p1.release <- resultWith(p1, "radius-3 job")
	p2.release <- resultWith(p2, "radius-0.5 job")

	// Stale results must be discarded, not applied: give their goroutines a
	// moment to run, then confirm nothing changed.
	time.Sleep(50 * time.Millisecond)
	final := ctrl.Snapshot()
	require.Len(t, final.Jobs, 1)
	assert.Equal(t, "radius-5 job", final.Jobs[0].Title)
	assert.Equal(t, 5.0, final.RadiusKm)
	assert.False(t, final.Loading)
}

func TestController_RadiusIsNormalizedAndDeduplicated(t *testing.T) {
	searcher := newGatedSearcher()
	ctrl := newController(searcher)

	ctx := context.Background()
	ctrl.Start(ctx)
	p := searcher.next(t)
	p.release <- resultWith(p, "seed")

	// 3.1 snaps to 3.0 == current radius: no new search may be issued.
	ctrl.SetRadius(ctx, 3.1)
	select {
	case <-searcher.started:
		t.Fatal("radius snap to the current value must not issue a search")
	case <-time.After(50 * time.Millisecond):
	}

	// 9 clamps to 5: one search.
	ctrl.SetRadius(ctx, 9)
	p = searcher.next(t)
	assert.Equal(t, 5.0, p.radius)
	p.release <- resultWith(p)
}

func TestController_SearchErrorKeepsRadiusAndSetsErr(t *testing.T) {
	searcher := newGatedSearcher()
	ctrl := newController(searcher)

	snaps := make(chan feed.Snapshot, 16)
	unsub := ctrl.Subscribe(func(s feed.Snapshot) { snaps <- s })
	defer unsub()

	ctx := context.Background()
	ctrl.Start(ctx)
	p := searcher.next(t)
	p.release <- nil // fail

	snap := waitFor(t, snaps, func(s feed.Snapshot) bool { return !s.Loading && s.Err != nil })
	assert.Error(t, snap.Err)
	assert.Equal(t, feed.DefaultRadiusKm, snap.RadiusKm)
	assert.Empty(t, snap.Jobs)
}

func TestController_ErrorThenRecovery(t *testing.T) {
	searcher := newGatedSearcher()
	ctrl := newController(searcher)

	snaps := make(chan feed.Snapshot, 32)
	unsub := ctrl.Subscribe(func(s feed.Snapshot) { snaps <- s })
	defer unsub()

	ctx := context.Background()
	ctrl.Start(ctx)
	p := searcher.next(t)
	p.release <- nil

	waitFor(t, snaps, func(s feed.Snapshot) bool { return s.Err != nil })

	ctrl.SetRadius(ctx, 4)
	p = searcher.next(t)
	p.release <- resultWith(p, "recovered")

	snap := waitFor(t, snaps, func(s feed.Snapshot) bool { return !s.Loading && len(s.Jobs) == 1 })
	assert.NoError(t, snap.Err)
	assert.Equal(t, "recovered", snap.Jobs[0].Title)
}
