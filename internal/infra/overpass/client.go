package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

const (
	defaultBaseURL = "https://overpass-api.de/api/interpreter"
	defaultTimeout = 25 * time.Second
	minRadiusM     = 100
)

// ErrUnavailable reports that the circuit breaker is refusing requests.
var ErrUnavailable = errors.New("places endpoint unavailable")

// Options tunes the client beyond its defaults.
type Options struct {
	Timeout          time.Duration
	BreakerEnabled   bool
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Client queries the Overpass API for pharmacies around a coordinate.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds an API client. A nil breaker means calls go straight
// through.
func NewClient(baseURL string, opts Options) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var breaker *gobreaker.CircuitBreaker
	if opts.BreakerEnabled {
		threshold := opts.FailureThreshold
		if threshold == 0 {
			threshold = 5
		}
		openTimeout := opts.OpenTimeout
		if openTimeout <= 0 {
			openTimeout = 30 * time.Second
		}
		breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "overpass",
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
		})
	}

	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
	}
}

// Nearby fetches pharmacies around the origin within radiusKm.
func (c *Client) Nearby(ctx context.Context, origin pharmacy.Coordinate, radiusKm float64) ([]pharmacy.Place, error) {
	if c.breaker == nil {
		return c.fetch(ctx, origin, radiusKm)
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, origin, radiusKm)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	return result.([]pharmacy.Place), nil
}

func (c *Client) fetch(ctx context.Context, origin pharmacy.Coordinate, radiusKm float64) ([]pharmacy.Place, error) {
	form := url.Values{"data": {buildQuery(origin, radiusKm)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("places request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}
	return normalizeElements(raw.Elements), nil
}

// buildQuery asks for pharmacy nodes, ways and relations around the origin.
// The radius never drops below 100 meters so tiny inputs still return the
// pharmacy across the street.
func buildQuery(origin pharmacy.Coordinate, radiusKm float64) string {
	radiusM := radiusKm * 1000
	if radiusM < minRadiusM {
		radiusM = minRadiusM
	}
	around := fmt.Sprintf("(around:%.0f,%v,%v)", radiusM, origin.Lat, origin.Lng)
	var sb strings.Builder
	sb.WriteString("[out:json][timeout:25];\n(\n")
	for _, kind := range []string{"node", "way", "relation"} {
		fmt.Fprintf(&sb, "  %s[\"amenity\"=\"pharmacy\"]%s;\n", kind, around)
	}
	sb.WriteString(");\nout center tags;")
	return sb.String()
}

type apiResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func normalizeElements(elements []element) []pharmacy.Place {
	places := make([]pharmacy.Place, 0, len(elements))
	for _, el := range elements {
		lat, lng := el.Lat, el.Lon
		if (lat == nil || lng == nil) && el.Center != nil {
			centerLat, centerLng := el.Center.Lat, el.Center.Lon
			lat, lng = &centerLat, &centerLng
		}
		// Ways and relations without a computed center cannot be placed on
		// a map and are dropped.
		if lat == nil || lng == nil {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = "Pharmacy"
		}
		phone := el.Tags["phone"]
		if phone == "" {
			phone = el.Tags["contact:phone"]
		}

		places = append(places, pharmacy.Place{
			OSMID:   fmt.Sprintf("%s_%d", el.Type, el.ID),
			Name:    name,
			Address: buildAddress(el.Tags),
			Phone:   phone,
			Hours:   el.Tags["opening_hours"],
			Lat:     lat,
			Lng:     lng,
			Source:  pharmacy.SourceOverpass,
		})
	}
	return places
}

func buildAddress(tags map[string]string) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"addr:housenumber", "addr:street", "addr:city", "addr:state", "addr:postcode"} {
		if v := tags[key]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return tags["addr:full"]
}
