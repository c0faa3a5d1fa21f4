package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/location"
)

// Snapshot is the feed state published to subscribers. The job list is
// replaced wholesale on every applied search result, never merged.
type Snapshot struct {
	Position domain.Position
	RadiusKm float64
	Jobs     []domain.JobWithDistance
	Loading  bool
	Err      error
}

// Controller orchestrates location resolution and proximity search. It owns
// the radius and reacts to two events, "position resolved" and "radius
// changed", each of which issues one search. A generation counter makes the
// last issued request win: results of superseded requests are discarded at
// the point of application, no cancellation needed.
type Controller struct {
	searcher Searcher
	resolver *location.Resolver
	log      zerolog.Logger

	mu       sync.Mutex
	pos      domain.Position
	resolved bool
	radius   float64
	jobs     []domain.JobWithDistance
	loading  bool
	err      error
	gen      uint64
	subs     map[int]func(Snapshot)
	nextSub  int
}

func NewController(searcher Searcher, resolver *location.Resolver, log zerolog.Logger) *Controller {
	return &Controller{
		searcher: searcher,
		resolver: resolver,
		radius:   DefaultRadiusKm,
		subs:     make(map[int]func(Snapshot)),
		log:      log.With().Str("component", "feed").Logger(),
	}
}

// Start resolves the position (at most once; a later Start is a plain
// re-search) and issues the first search.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	resolved := c.resolved
	c.mu.Unlock()

	if !resolved {
		pos, _ := c.resolver.Resolve(ctx) // never fails, degrades to fallback
		c.mu.Lock()
		c.pos = pos
		c.resolved = true
		c.mu.Unlock()
		c.log.Info().Float64("lat", pos.Lat).Float64("lng", pos.Lng).Msg("position resolved")
	}
	c.search(ctx)
}

// SetRadius reacts to explicit user input: the value is snapped and clamped,
// and one search goes out per effective change.
func (c *Controller) SetRadius(ctx context.Context, radiusKm float64) {
	normalized := NormalizeRadius(radiusKm)

	c.mu.Lock()
	if normalized == c.radius {
		c.mu.Unlock()
		return
	}
	c.radius = normalized
	resolved := c.resolved
	c.mu.Unlock()

	c.log.Debug().Float64("radius_km", normalized).Msg("radius changed")
	// Before the position is resolved there is nothing to search against;
	// Start will pick the new radius up.
	if resolved {
		c.search(ctx)
	}
}

// UseCurrentLocation explicitly re-resolves the position and re-searches.
// This is the only path that triggers resolution again after Start.
func (c *Controller) UseCurrentLocation(ctx context.Context) {
	pos, _ := c.resolver.Resolve(ctx)

	c.mu.Lock()
	c.pos = pos
	c.resolved = true
	c.mu.Unlock()

	c.search(ctx)
}

// Refresh re-runs the search at the current position and radius.
func (c *Controller) Refresh(ctx context.Context) {
	c.search(ctx)
}

// Snapshot returns the current feed state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn for feed-state changes and returns an unsubscribe
// func.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// search issues one request for the current (position, radius) under a fresh
// generation and applies the outcome only if no newer request was issued in
// the meantime.
func (c *Controller) search(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	pos, radius := c.pos, c.radius
	c.loading = true
	c.err = nil
	c.notifyLocked()
	c.mu.Unlock()

	go func() {
		res, err := c.searcher.Search(ctx, pos, radius)

		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			c.log.Debug().Uint64("gen", gen).Msg("discarding superseded search result")
			return
		}
		c.loading = false
		if err != nil {
			c.err = err
			c.notifyLocked()
			return
		}
		c.jobs = res.Jobs
		c.notifyLocked()
	}()
}

func (c *Controller) snapshotLocked() Snapshot {
	jobs := make([]domain.JobWithDistance, len(c.jobs))
	copy(jobs, c.jobs)
	return Snapshot{
		Position: c.pos,
		RadiusKm: c.radius,
		Jobs:     jobs,
		Loading:  c.loading,
		Err:      c.err,
	}
}

// notifyLocked calls subscribers while holding the lock; callbacks must not
// call back into the controller.
func (c *Controller) notifyLocked() {
	snap := c.snapshotLocked()
	for _, fn := range c.subs {
		fn(snap)
	}
}
