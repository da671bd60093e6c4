package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSuggestShortQuerySkipsNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, 5)

	for _, q := range []string{"", "ab", "  a  "} {
		if got := client.Suggest(context.Background(), q); got != nil {
			t.Errorf("Suggest(%q) = %v, want nil", q, got)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("short queries must not hit the network")
	}
}

func TestSuggestPassesQueryAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "Zermatt" {
			t.Errorf("q = %q, want Zermatt", q.Get("q"))
		}
		if q.Get("limit") != "3" {
			t.Errorf("limit = %q, want 3", q.Get("limit"))
		}
		if q.Get("addressdetails") != "1" {
			t.Errorf("addressdetails = %q, want 1", q.Get("addressdetails"))
		}
		fmt.Fprint(w, `[
			{"display_name": "Zermatt, Valais, Switzerland", "lat": "46.0207", "lon": "7.7491"},
			{"display_name": "Zermatt Bahnhof", "lat": "46.0244", "lon": "7.7467"}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, 3)

	places := client.Suggest(context.Background(), "Zermatt")
	if len(places) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(places))
	}
	if places[0].DisplayName != "Zermatt, Valais, Switzerland" {
		t.Fatalf("unexpected first suggestion: %+v", places[0])
	}
}

func TestSuggestFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	client := NewClient(srv.Client(), srv.URL, 5)

	if got := client.Suggest(context.Background(), "Zermatt"); got != nil {
		t.Fatalf("upstream failure must yield no suggestions, got %v", got)
	}

	// Transport-level failure behaves the same.
	srv.Close()
	if got := client.Suggest(context.Background(), "Zermatt"); got != nil {
		t.Fatalf("transport failure must yield no suggestions, got %v", got)
	}
}

func TestResolveParsesStringCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("resolve should request a single result, got limit=%q", r.URL.Query().Get("limit"))
		}
		fmt.Fprint(w, `[{"display_name": "Interlaken", "lat": "46.5", "lon": "7.5"}]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, 5)

	coord, ok := client.Resolve(context.Background(), "Interlaken")
	if !ok {
		t.Fatalf("expected a match")
	}
	if coord.Lat != 46.5 || coord.Lng != 7.5 {
		t.Fatalf("unexpected coordinate: %+v", coord)
	}
}

func TestResolveNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, 5)

	if _, ok := client.Resolve(context.Background(), "Nowhereville123xyz"); ok {
		t.Fatalf("expected no match for unknown place")
	}
}

func TestResolveUnparsableCoordinate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"display_name": "Broken", "lat": "north-ish", "lon": "7.5"}]`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL, 5)

	if _, ok := client.Resolve(context.Background(), "Broken"); ok {
		t.Fatalf("unparsable coordinates must collapse to not-found")
	}
}

func TestResolveEmptyText(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://unused.invalid", 5)
	if _, ok := client.Resolve(context.Background(), "   "); ok {
		t.Fatalf("blank text must not resolve")
	}
}
