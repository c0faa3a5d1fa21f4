// Package location resolves the device's geographic position. Discovery must
// never block past its budget or dead-end the feed, so resolution always
// degrades to a fixed fallback instead of failing.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/work-near-me/client/internal/domain"
)

// Fallback is used whenever no real fix can be obtained: central Ho Chi Minh
// City, the marketplace's launch area.
var Fallback = domain.Position{Lat: 10.762622, Lng: 106.660172}

const (
	// DefaultTimeout bounds one lookup attempt.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxAge is how long a cached fix stays acceptable.
	DefaultMaxAge = 5 * time.Minute
)

// Provider yields a position fix. Implementations may fail; the Resolver
// wrapper is what guarantees degradation.
type Provider interface {
	Resolve(ctx context.Context) (domain.Position, error)
}

// Static always returns a fixed position, for users who configure their
// coordinates explicitly.
type Static struct {
	Pos domain.Position
}

func (s Static) Resolve(ctx context.Context) (domain.Position, error) {
	if !s.Pos.Valid() {
		return domain.Position{}, fmt.Errorf("configured position %+v out of range", s.Pos)
	}
	return s.Pos, nil
}

// IPGeo estimates the position from the machine's public IP using an
// ip-api-style JSON endpoint. Low accuracy is fine for a kilometers-scale
// job radius. Fixes are cached up to maxAge.
type IPGeo struct {
	endpoint string
	http     *http.Client
	maxAge   time.Duration

	mu        sync.Mutex
	cached    domain.Position
	fetchedAt time.Time
}

func NewIPGeo(endpoint string, timeout, maxAge time.Duration) *IPGeo {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &IPGeo{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		maxAge:   maxAge,
	}
}

func (g *IPGeo) Resolve(ctx context.Context) (domain.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached.Valid() && time.Since(g.fetchedAt) < g.maxAge {
		return g.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return domain.Position{}, fmt.Errorf("build geolocation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return domain.Position{}, fmt.Errorf("geolocation lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Position{}, fmt.Errorf("geolocation service returned %d", resp.StatusCode)
	}

	var fix struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fix); err != nil {
		return domain.Position{}, fmt.Errorf("decode geolocation response: %w", err)
	}

	pos := domain.Position{Lat: fix.Lat, Lng: fix.Lon}
	if !pos.Valid() {
		return domain.Position{}, fmt.Errorf("geolocation service returned invalid fix %+v", pos)
	}

	g.cached = pos
	g.fetchedAt = time.Now()
	return pos, nil
}

// Resolver wraps a Provider with the degradation policy: any failure, or a
// nil provider, yields the fallback position and no error.
type Resolver struct {
	provider Provider
	fallback domain.Position
	log      zerolog.Logger
}

func NewResolver(p Provider, log zerolog.Logger) *Resolver {
	return &Resolver{
		provider: p,
		fallback: Fallback,
		log:      log.With().Str("component", "location").Logger(),
	}
}

// Resolve never returns an error: it is either a real fix or the fallback.
func (r *Resolver) Resolve(ctx context.Context) (domain.Position, error) {
	if r.provider == nil {
		return r.fallback, nil
	}

	pos, err := r.provider.Resolve(ctx)
	if err != nil {
		r.log.Warn().Err(err).
			Float64("lat", r.fallback.Lat).Float64("lng", r.fallback.Lng).
			Msg("geolocation unavailable, using fallback position")
		return r.fallback, nil
	}
	return pos, nil
}
