// Package geocode resolves free-text addresses to coordinates and lists
// address suggestions. The wire shape is the Nominatim search contract:
// an array of results with display_name and lat/lon as decimal strings.
//
// Both operations fail soft: transport errors, bad payloads and empty
// result sets collapse to "no suggestions" / "not found" and never reach
// the caller as errors.
package geocode

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/slopefinder/slopefinder/internal/httpx"
	"github.com/slopefinder/slopefinder/internal/resorts"
)

// MinQueryLength is the shortest query worth sending upstream; anything
// shorter yields no suggestions without a network call.
const MinQueryLength = 3

// Place is a single geocoding result.
type Place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Coordinate parses the result's string lat/lon pair.
func (p Place) Coordinate() (resorts.Coordinate, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return resorts.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return resorts.Coordinate{}, false
	}
	return resorts.Coordinate{Lat: lat, Lng: lon}, true
}

// Client talks to a Nominatim-compatible geocoding endpoint.
type Client struct {
	baseURL string
	limit   int
	caller  *httpx.Caller
}

// NewClient creates a geocoding client. limit caps the number of
// suggestions requested per query. Requests are not retried: suggestions
// are superseded by the next keystroke and resolution failures collapse
// to "not found" anyway.
func NewClient(client *http.Client, baseURL string, limit int) *Client {
	if limit <= 0 {
		limit = 5
	}
	return &Client{
		baseURL: baseURL,
		limit:   limit,
		caller: httpx.NewCaller(client, "geocode", httpx.BackoffConfig{
			MaxRetries:      0,
			InitialInterval: 500 * time.Millisecond,
		}),
	}
}

// Suggest returns up to limit address suggestions for the given text.
func (c *Client) Suggest(ctx context.Context, text string) []Place {
	text = strings.TrimSpace(text)
	if len(text) < MinQueryLength {
		return nil
	}

	var places []Place
	if err := c.caller.GetJSON(ctx, c.searchURL(text, c.limit), &places); err != nil {
		log.Printf("geocode suggest failed for %q: %v", text, err)
		return nil
	}
	return places
}

// Resolve geocodes the given text to a single coordinate. The first
// result is authoritative. The second return value is false when the
// text cannot be resolved.
func (c *Client) Resolve(ctx context.Context, text string) (resorts.Coordinate, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return resorts.Coordinate{}, false
	}

	var places []Place
	if err := c.caller.GetJSON(ctx, c.searchURL(text, 1), &places); err != nil {
		log.Printf("geocode resolve failed for %q: %v", text, err)
		return resorts.Coordinate{}, false
	}
	if len(places) == 0 {
		return resorts.Coordinate{}, false
	}

	return places[0].Coordinate()
}

func (c *Client) searchURL(text string, limit int) string {
	values := url.Values{}
	values.Set("q", text)
	values.Set("format", "jsonv2")
	values.Set("addressdetails", "1")
	values.Set("limit", strconv.Itoa(limit))
	return c.baseURL + "?" + values.Encode()
}
