package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Geocoder resolves coordinates to a human readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

const (
	// DefaultNominatimURL is the public OpenStreetMap reverse endpoint.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"
	// DefaultUserAgent identifies the service, as Nominatim's usage policy requires.
	DefaultUserAgent = "CivicEcho-App/1.0"
	// DefaultTimeout bounds one reverse geocoding request.
	DefaultTimeout = 5 * time.Second
)

// NominatimClient is a rate-limited OpenStreetMap Nominatim reverse geocoder.
type NominatimClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewNominatimClient builds a client allowing one request per second.
func NewNominatimClient(baseURL string, httpClient *http.Client) *NominatimClient {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &NominatimClient{
		baseURL:   baseURL,
		userAgent: DefaultUserAgent,
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type nominatimResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

// ReverseGeocode implements Geocoder. It returns "" with a nil error when the
// service knows nothing about the point.
func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("geocode rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}

	var out nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode geocode response: %w", err)
	}
	return formatAddress(out), nil
}

// formatAddress joins road, neighbourhood, city and country, falling back to the
// display name when none are present.
func formatAddress(r nominatimResponse) string {
	parts := make([]string, 0, 4)
	for _, keys := range [][]string{
		{"road", "pedestrian", "footway"},
		{"neighbourhood", "suburb"},
		{"city", "town", "village"},
		{"country"},
	} {
		for _, k := range keys {
			if v := r.Address[k]; v != "" {
				parts = append(parts, v)
				break
			}
		}
	}
	if len(parts) == 0 {
		return r.DisplayName
	}
	return strings.Join(parts, ", ")
}
