package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

func TestNearbyPostsQueryAndNormalizes(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"elements": [
				{
					"type": "node", "id": 101, "lat": 37.78, "lon": -122.41,
					"tags": {
						"name": "Mission Pharmacy",
						"addr:housenumber": "240", "addr:street": "Mission St",
						"addr:city": "San Francisco", "addr:state": "CA", "addr:postcode": "94105",
						"phone": "+1 415 555 0100",
						"opening_hours": "Mo-Fr 09:00-18:00"
					}
				},
				{
					"type": "way", "id": 202,
					"center": {"lat": 37.79, "lon": -122.4},
					"tags": {"contact:phone": "415 555 0200", "addr:full": "1 Market St"}
				},
				{
					"type": "relation", "id": 303,
					"tags": {"name": "No Location Pharmacy"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	places, err := client.Nearby(context.Background(), pharmacy.Coordinate{Lat: 37.78, Lng: -122.41}, 5)
	require.NoError(t, err)

	require.Contains(t, gotQuery, `node["amenity"="pharmacy"](around:5000,37.78,-122.41);`)
	require.Contains(t, gotQuery, `way["amenity"="pharmacy"]`)
	require.Contains(t, gotQuery, `relation["amenity"="pharmacy"]`)
	require.Contains(t, gotQuery, "out center tags;")

	// The element with no coordinates is dropped.
	require.Len(t, places, 2)

	first := places[0]
	require.Equal(t, "node_101", first.OSMID)
	require.Equal(t, "Mission Pharmacy", first.Name)
	require.Equal(t, "240 Mission St San Francisco CA 94105", first.Address)
	require.Equal(t, "+1 415 555 0100", first.Phone)
	require.Equal(t, "Mo-Fr 09:00-18:00", first.Hours)
	require.Equal(t, pharmacy.SourceOverpass, first.Source)
	require.NotNil(t, first.Lat)
	require.Equal(t, 37.78, *first.Lat)

	second := places[1]
	require.Equal(t, "way_202", second.OSMID)
	require.Equal(t, "Pharmacy", second.Name)
	require.Equal(t, "1 Market St", second.Address)
	require.Equal(t, "415 555 0200", second.Phone)
	require.NotNil(t, second.Lat)
	require.Equal(t, 37.79, *second.Lat)
	require.Equal(t, -122.4, *second.Lng)
}

func TestNearbyEnforcesMinimumRadius(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostFormValue("data")
		_, _ = w.Write([]byte(`{"elements": []}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	places, err := client.Nearby(context.Background(), pharmacy.Coordinate{Lat: 1, Lng: 2}, 0.01)
	require.NoError(t, err)
	require.Empty(t, places)
	require.Contains(t, gotQuery, "(around:100,1,2)")
}

func TestNearbyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too busy", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{})
	_, err := client.Nearby(context.Background(), pharmacy.Coordinate{Lat: 1, Lng: 2}, 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=504")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{BreakerEnabled: true, FailureThreshold: 2})

	origin := pharmacy.Coordinate{Lat: 1, Lng: 2}
	_, err := client.Nearby(context.Background(), origin, 5)
	require.Error(t, err)
	_, err = client.Nearby(context.Background(), origin, 5)
	require.Error(t, err)

	_, err = client.Nearby(context.Background(), origin, 5)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestBuildAddressJoinsComponentsInOrder(t *testing.T) {
	address := buildAddress(map[string]string{
		"addr:housenumber": "100",
		"addr:street":      "Main St",
		"addr:city":        "Philadelphia",
		"addr:state":       "PA",
		"addr:postcode":    "19103",
	})
	require.Equal(t, "100 Main St Philadelphia PA 19103", address)

	// Missing components are skipped, not left as gaps.
	require.Equal(t, "Main St PA", buildAddress(map[string]string{
		"addr:street": "Main St",
		"addr:state":  "PA",
	}))

	// addr:full only applies when no structured components exist.
	require.Equal(t, "1 Market St", buildAddress(map[string]string{"addr:full": "1 Market St"}))
	require.Empty(t, buildAddress(map[string]string{}))
}

func TestNormalizeElementsPhoneFallback(t *testing.T) {
	lat, lng := 1.0, 2.0
	places := normalizeElements([]element{
		{Type: "node", ID: 1, Lat: &lat, Lon: &lng, Tags: map[string]string{
			"phone":         "primary",
			"contact:phone": "secondary",
		}},
	})
	require.Len(t, places, 1)
	require.Equal(t, "primary", places[0].Phone)
}
