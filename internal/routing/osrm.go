package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrNoRoute means the provider answered but had no route to offer.
	ErrNoRoute = errors.New("no route available")
	// ErrUpstream covers transport failures, bad status codes and payloads
	// that cannot be read as a route.
	ErrUpstream = errors.New("routing provider failure")
)

// Coordinate holds lat/lon
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cache is the subset of cache.RouteCache the client needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
}

// OSRM response format
type osrmResponse struct {
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Client requests driving routes from an OSRM server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
}

// NewClient builds a client whose requests give up after timeout. cache may
// be nil.
func NewClient(baseURL string, timeout time.Duration, cache Cache) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

// Route returns the route geometry from source to target in provider order.
func (c *Client) Route(ctx context.Context, source, target Coordinate) ([]Coordinate, error) {
	key := CacheKey(source, target)
	if c.cache != nil {
		var cached []Coordinate
		if err := c.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	coords, err := c.fetch(ctx, source, target)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, coords); err != nil {
			slog.Warn("route cache write failed", "key", key, "error", err)
		}
	}
	return coords, nil
}

func (c *Client) fetch(ctx context.Context, source, target Coordinate) ([]Coordinate, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=full&geometries=geojson",
		c.baseURL, source.Lon, source.Lat, target.Lon, target.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	// OSRM answers NoRoute with a 400 and a JSON body; anything else that is
	// not a 200 is a provider failure.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, fmt.Errorf("%w: OSRM returned %d", ErrUpstream, resp.StatusCode)
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: JSON decode failed: %v", ErrUpstream, err)
	}
	if len(parsed.Routes) == 0 {
		return nil, ErrNoRoute
	}

	pairs := parsed.Routes[0].Geometry.Coordinates
	coords := make([]Coordinate, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: coordinate %d has %d values", ErrUpstream, i, len(pair))
		}
		coords = append(coords, Coordinate{Lon: pair[0], Lat: pair[1]})
	}
	if len(coords) == 0 {
		return nil, ErrNoRoute
	}
	return coords, nil
}

// CacheKey is the Redis key under which a route geometry is stored.
func CacheKey(source, target Coordinate) string {
	return fmt.Sprintf("route:%.6f,%.6f;%.6f,%.6f", source.Lon, source.Lat, target.Lon, target.Lat)
}
