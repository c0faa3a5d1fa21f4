// Package feed turns a position and a search radius into a ranked,
// distance-annotated job feed.
package feed

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/pkg/api"
)

var (
	ErrInvalidPosition = errors.New("position out of range")
	ErrInvalidRadius   = errors.New("radius must be positive")
)

// Result is one immutable search outcome. The position and radius it was
// issued with are frozen here; a later radius change never re-tags jobs that
// already came back.
type Result struct {
	Position domain.Position
	RadiusKm float64
	Jobs     []domain.JobWithDistance
}

// Searcher is the seam the controller depends on.
type Searcher interface {
	Search(ctx context.Context, pos domain.Position, radiusKm float64) (*Result, error)
}

// Service performs proximity searches against the API. The server pre-filters
// by radius and computes distances; the client re-checks the ordering
// invariant rather than trusting it.
type Service struct {
	client *api.Client
	log    zerolog.Logger
}

func NewService(client *api.Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("component", "search").Logger(),
	}
}

// Search issues one nearby-jobs request for (pos, radiusKm). Domain
// validation happens before any network call.
func (s *Service) Search(ctx context.Context, pos domain.Position, radiusKm float64) (*Result, error) {
	if !pos.Valid() {
		return nil, ErrInvalidPosition
	}
	if radiusKm <= 0 {
		return nil, ErrInvalidRadius
	}

	jobs, err := s.client.NearbyJobs(ctx, pos, radiusKm)
	if err != nil {
		return nil, err
	}

	for i := range jobs {
		if jobs[i].Distance < 0 {
			s.log.Warn().Str("job", jobs[i].ID.String()).
				Float64("distance", jobs[i].Distance).
				Msg("server reported negative distance, clamping to zero")
			jobs[i].Distance = 0
		}
	}

	// The server already orders by distance; keep the invariant locally even
	// if it ever stops doing so. Stable, so equal distances keep server order.
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].Distance < jobs[j].Distance
	})

	return &Result{Position: pos, RadiusKm: radiusKm, Jobs: jobs}, nil
}
