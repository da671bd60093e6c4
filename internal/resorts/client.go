package resorts

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/slopefinder/slopefinder/internal/httpx"
)

// DefaultPageSize matches the resort-data service default.
const DefaultPageSize = 15

// Client fetches paged resort records from the resort-data service.
type Client struct {
	baseURL string
	caller  *httpx.Caller
}

// NewClient creates a resort-data client. baseURL is the service root,
// e.g. "http://localhost:8000".
func NewClient(client *http.Client, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		caller: httpx.NewCaller(client, "resorts", httpx.BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		}),
	}
}

// PageRequest identifies one page of a search: a resolved coordinate, a
// calendar date (YYYY-MM-DD) and a 1-based page index.
type PageRequest struct {
	Coordinate Coordinate
	Date       string
	Page       int
	PageSize   int
}

// FetchPage requests one page of resorts near the given coordinate. Any
// non-success response is a hard failure of the fetch; there is no partial
// or degraded result.
func (c *Client) FetchPage(ctx context.Context, req PageRequest) (ResultPage, error) {
	if req.Page < 1 {
		return ResultPage{}, fmt.Errorf("page must be >= 1, got %d", req.Page)
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(req.Coordinate.Lat, 'f', -1, 64))
	values.Set("lng", strconv.FormatFloat(req.Coordinate.Lng, 'f', -1, 64))
	values.Set("date", req.Date)
	values.Set("page", strconv.Itoa(req.Page))
	values.Set("page_size", strconv.Itoa(pageSize))

	u := fmt.Sprintf("%s/ski-resorts/by-distance?%s", c.baseURL, values.Encode())

	var page ResultPage
	if err := c.caller.GetJSON(ctx, u, &page); err != nil {
		return ResultPage{}, fmt.Errorf("fetch resorts page %d: %w", req.Page, err)
	}

	return page, nil
}
