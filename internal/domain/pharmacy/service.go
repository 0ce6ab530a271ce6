package pharmacy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

// Config drives locator behavior.
type Config struct {
	DefaultRadiusKm float64
	CacheTTL        time.Duration
}

// SearchRequest describes one nearby-pharmacy lookup.
type SearchRequest struct {
	Origin   Coordinate
	Query    string
	RadiusKm float64
}

// RefillCall is the outcome of a refill request: the preferred pharmacy and
// the normalized dial target handed to the platform.
type RefillCall struct {
	Pharmacy Place  `json:"pharmacy"`
	Dial     string `json:"dial"`
}

// Service exposes the pharmacy locator workflows.
type Service interface {
	Search(ctx context.Context, userID int64, req SearchRequest) ([]Place, error)
	Preferred(ctx context.Context, userID int64) (Place, bool, error)
	ChoosePreferred(ctx context.Context, userID int64, place Place) (Place, error)
	RefillCall(ctx context.Context, userID int64) (RefillCall, error)
}

type service struct {
	cfg    Config
	places PlacesClient
	cache  Cache
	repo   Repository
	logger *slog.Logger
}

// NewService wires up the pharmacy domain.
func NewService(cfg Config, places PlacesClient, cache Cache, repo Repository, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		places: places,
		cache:  cache,
		repo:   repo,
		logger: logger.With("component", "pharmacy.service"),
	}
}

// Search fetches pharmacies around the origin, filters by the free-text
// query, ranks nearest first and marks the user's preferred pharmacy. The
// raw places response is cached per search area.
func (s *service) Search(ctx context.Context, userID int64, req SearchRequest) ([]Place, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusKm
	}

	key := cacheKey(req.Origin, radius)
	places, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("places cache read failed", "error", err)
		hit = false
	}
	if !hit {
		places, err = s.places.Nearby(ctx, req.Origin, radius)
		if err != nil {
			return nil, apperrors.Wrap("places_error", "failed to fetch nearby pharmacies", err)
		}
		if err := s.cache.Set(ctx, key, places, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("places cache write failed", "error", err)
		}
	}

	visible := RankByDistance(Filter(places, req.Query), req.Origin)

	preferred, found, err := s.repo.GetPreferred(ctx, userID)
	if err != nil {
		s.logger.Warn("preferred pharmacy read failed", "user_id", userID, "error", err)
	} else if found {
		for i := range visible {
			if visible[i].Matches(preferred) {
				visible[i].Preferred = true
			}
		}
	}
	return visible, nil
}

func (s *service) Preferred(ctx context.Context, userID int64) (Place, bool, error) {
	place, found, err := s.repo.GetPreferred(ctx, userID)
	if err != nil {
		return Place{}, false, apperrors.Wrap("store_error", "failed to load preferred pharmacy", err)
	}
	return place, found, nil
}

// ChoosePreferred snapshots the place into the user's preferred slot,
// silently replacing any previous selection.
func (s *service) ChoosePreferred(ctx context.Context, userID int64, place Place) (Place, error) {
	snapshot := place.Snapshot()
	if err := s.repo.SavePreferred(ctx, userID, snapshot); err != nil {
		return Place{}, apperrors.Wrap("store_error", "failed to save preferred pharmacy", err)
	}
	return snapshot, nil
}

// RefillCall resolves the preferred pharmacy into a dialable phone target.
// A missing selection or a selection without a phone number is surfaced as
// an explicit warning and no action is taken.
func (s *service) RefillCall(ctx context.Context, userID int64) (RefillCall, error) {
	preferred, found, err := s.repo.GetPreferred(ctx, userID)
	if err != nil {
		return RefillCall{}, apperrors.Wrap("store_error", "failed to load preferred pharmacy", err)
	}
	if !found {
		return RefillCall{}, apperrors.Wrap("no_preferred_pharmacy", "pick a preferred pharmacy first", nil)
	}
	dial := DialTarget(preferred.Phone)
	if dial == "" {
		return RefillCall{}, apperrors.Wrap("no_phone", "no pharmacy phone number found, pick a pharmacy that has a phone listed", nil)
	}
	return RefillCall{Pharmacy: preferred, Dial: dial}, nil
}

func cacheKey(origin Coordinate, radiusKm float64) string {
	// Coordinates rounded to ~100m so nearby refreshes share an entry.
	return fmt.Sprintf("places:%.3f:%.3f:%g", origin.Lat, origin.Lng, radiusKm)
}
