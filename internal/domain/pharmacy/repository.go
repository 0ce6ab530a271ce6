package pharmacy

import (
	"context"
	"time"
)

// PlacesClient queries the external points-of-interest collaborator for
// pharmacies around a coordinate.
type PlacesClient interface {
	Nearby(ctx context.Context, origin Coordinate, radiusKm float64) ([]Place, error)
}

// Repository persists the single preferred-pharmacy snapshot per user.
type Repository interface {
	GetPreferred(ctx context.Context, userID int64) (Place, bool, error)
	SavePreferred(ctx context.Context, userID int64, place Place) error
}

// Cache stores places-query results keyed by search area.
type Cache interface {
	Get(ctx context.Context, key string) ([]Place, bool, error)
	Set(ctx context.Context, key string, places []Place, ttl time.Duration) error
}
