package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultMapQuestURL is the MapQuest-hosted Nominatim search endpoint.
const DefaultMapQuestURL = "https://open.mapquestapi.com/nominatim/v1/search.php"

// countryQualifier is appended to every query so ambiguous Dutch place names
// do not resolve to same-named towns abroad.
const countryQualifier = ", Nederland"

// Result is a geocoding outcome. Found is false when the service returned no
// match for the query.
type Result struct {
	Lon   float64
	Lat   float64
	Found bool
}

// Geocoder maps a place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Result, error)
}

// MapQuest geocodes place names through the MapQuest open Nominatim API.
type MapQuest struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewMapQuest creates a geocoder client. baseURL falls back to
// DefaultMapQuestURL when empty.
func NewMapQuest(baseURL, apiKey string, client *http.Client) *MapQuest {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultMapQuestURL
	}
	return &MapQuest{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

// Geocode queries for the place name with the country qualifier and returns
// the first match. No matches yields Found=false, not an error.
func (m *MapQuest) Geocode(ctx context.Context, name string) (Result, error) {
	if strings.TrimSpace(name) == "" {
		return Result{}, nil
	}

	params := url.Values{}
	params.Set("key", m.apiKey)
	params.Set("format", "json")
	params.Set("q", name+countryQualifier)
	params.Set("addressdetails", "1")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("geocode %q: status %d", name, resp.StatusCode)
	}

	// Nominatim serializes coordinates as strings.
	var matches []struct {
		Lon string `json:"lon"`
		Lat string `json:"lat"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return Result{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	if len(matches) == 0 {
		return Result{}, nil
	}

	lon, err := strconv.ParseFloat(matches[0].Lon, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode %q: bad longitude %q", name, matches[0].Lon)
	}
	lat, err := strconv.ParseFloat(matches[0].Lat, 64)
	if err != nil {
		return Result{}, fmt.Errorf("geocode %q: bad latitude %q", name, matches[0].Lat)
	}
	return Result{Lon: lon, Lat: lat, Found: true}, nil
}
