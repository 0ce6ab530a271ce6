package pharmacy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

type stubPlaces struct {
	places []Place
	err    error
	calls  int
}

func (s *stubPlaces) Nearby(_ context.Context, _ Coordinate, _ float64) ([]Place, error) {
	s.calls++
	return s.places, s.err
}

type stubCache struct {
	entries map[string][]Place
	getErr  error
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]Place)}
}

func (s *stubCache) Get(_ context.Context, key string) ([]Place, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	places, ok := s.entries[key]
	return places, ok, nil
}

func (s *stubCache) Set(_ context.Context, key string, places []Place, _ time.Duration) error {
	s.entries[key] = places
	return nil
}

type stubPreferredRepo struct {
	preferred *Place
	saveErr   error
}

func (s *stubPreferredRepo) GetPreferred(_ context.Context, _ int64) (Place, bool, error) {
	if s.preferred == nil {
		return Place{}, false, nil
	}
	return *s.preferred, true, nil
}

func (s *stubPreferredRepo) SavePreferred(_ context.Context, _ int64, place Place) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.preferred = &place
	return nil
}

func newLocatorUnderTest(places *stubPlaces, cache Cache, repo Repository) Service {
	return NewService(
		Config{DefaultRadiusKm: 5, CacheTTL: time.Minute},
		places,
		cache,
		repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestSearchRanksFiltersAndMarksPreferred(t *testing.T) {
	places := &stubPlaces{places: []Place{
		coordPlace("far", 41.0, -75.0),
		coordPlace("near", 40.01, -75.0),
	}}
	repo := &stubPreferredRepo{preferred: &Place{ID: "near", OSMID: "near"}}
	svc := newLocatorUnderTest(places, newStubCache(), repo)

	got, err := svc.Search(context.Background(), 7, SearchRequest{Origin: Coordinate{Lat: 40.0, Lng: -75.0}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "near", got[0].ID)
	require.True(t, got[0].Preferred)
	require.False(t, got[1].Preferred)
	require.NotNil(t, got[0].DistanceMiles)
}

func TestSearchUsesCacheOnSecondCall(t *testing.T) {
	places := &stubPlaces{places: []Place{coordPlace("a", 40.1, -75.0)}}
	svc := newLocatorUnderTest(places, newStubCache(), &stubPreferredRepo{})
	origin := Coordinate{Lat: 40.0, Lng: -75.0}

	_, err := svc.Search(context.Background(), 7, SearchRequest{Origin: origin})
	require.NoError(t, err)
	_, err = svc.Search(context.Background(), 7, SearchRequest{Origin: origin})
	require.NoError(t, err)
	require.Equal(t, 1, places.calls)
}

func TestSearchCacheFailureFallsThrough(t *testing.T) {
	places := &stubPlaces{places: []Place{coordPlace("a", 40.1, -75.0)}}
	cache := newStubCache()
	cache.getErr = errors.New("cache down")
	svc := newLocatorUnderTest(places, cache, &stubPreferredRepo{})

	got, err := svc.Search(context.Background(), 7, SearchRequest{Origin: Coordinate{Lat: 40.0, Lng: -75.0}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, places.calls)
}

func TestSearchPlacesFailure(t *testing.T) {
	places := &stubPlaces{err: errors.New("overpass down")}
	svc := newLocatorUnderTest(places, newStubCache(), &stubPreferredRepo{})

	_, err := svc.Search(context.Background(), 7, SearchRequest{Origin: Coordinate{Lat: 40.0, Lng: -75.0}})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "places_error"))
}

func TestSearchZeroResultsIsNotAnError(t *testing.T) {
	svc := newLocatorUnderTest(&stubPlaces{}, newStubCache(), &stubPreferredRepo{})

	got, err := svc.Search(context.Background(), 7, SearchRequest{Origin: Coordinate{Lat: 40.0, Lng: -75.0}})
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearchFilterQuery(t *testing.T) {
	places := &stubPlaces{places: []Place{
		func() Place { p := coordPlace("1", 40.1, -75.0); p.Name = "Main St Pharmacy"; return p }(),
		func() Place { p := coordPlace("2", 40.2, -75.0); p.Name = "CVS"; return p }(),
	}}
	svc := newLocatorUnderTest(places, newStubCache(), &stubPreferredRepo{})

	got, err := svc.Search(context.Background(), 7, SearchRequest{
		Origin: Coordinate{Lat: 40.0, Lng: -75.0},
		Query:  "main",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1", got[0].ID)
}

func TestChoosePreferredOverwritesSnapshot(t *testing.T) {
	repo := &stubPreferredRepo{}
	svc := newLocatorUnderTest(&stubPlaces{}, newStubCache(), repo)

	first, err := svc.ChoosePreferred(context.Background(), 7, Place{OSMID: "node_1", Name: "First"})
	require.NoError(t, err)
	require.Equal(t, "node_1", first.ID)

	second, err := svc.ChoosePreferred(context.Background(), 7, Place{ID: "node_2", Name: "Second"})
	require.NoError(t, err)
	require.Equal(t, "node_2", second.OSMID)
	require.Equal(t, "Second", repo.preferred.Name)
}

func TestRefillCallRequiresPreferredWithPhone(t *testing.T) {
	svc := newLocatorUnderTest(&stubPlaces{}, newStubCache(), &stubPreferredRepo{})
	_, err := svc.RefillCall(context.Background(), 7)
	require.True(t, apperrors.IsCode(err, "no_preferred_pharmacy"))

	repo := &stubPreferredRepo{preferred: &Place{ID: "x", Phone: "call us"}}
	svc = newLocatorUnderTest(&stubPlaces{}, newStubCache(), repo)
	_, err = svc.RefillCall(context.Background(), 7)
	require.True(t, apperrors.IsCode(err, "no_phone"))

	repo.preferred.Phone = "+1 555-123-4567"
	call, err := svc.RefillCall(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "tel:+15551234567", call.Dial)
	require.Equal(t, "x", call.Pharmacy.ID)
}
