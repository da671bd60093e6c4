package resorts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func pageHandler(t *testing.T, gotQuery *map[string]string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			q := map[string]string{}
			for key := range r.URL.Query() {
				q[key] = r.URL.Query().Get(key)
			}
			*gotQuery = q
		}

		resortList := make([]ResortRecord, 0, 15)
		for i := 0; i < 15; i++ {
			resortList = append(resortList, ResortRecord{
				ID:            fmt.Sprintf("resort-%d", i),
				Name:          fmt.Sprintf("Resort %d", i),
				AirDistanceKm: float64(10 + i),
			})
		}

		_ = json.NewEncoder(w).Encode(ResultPage{
			Page:         1,
			PageSize:     15,
			TotalResorts: 32,
			HasMore:      true,
			Resorts:      resortList,
		})
	}
}

func TestFetchPageRequestAndDecode(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(pageHandler(t, &query))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	page, err := client.FetchPage(context.Background(), PageRequest{
		Coordinate: Coordinate{Lat: 46.5, Lng: 7.5},
		Date:       "2025-01-10",
		Page:       1,
		PageSize:   15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]string{
		"lat":       "46.5",
		"lng":       "7.5",
		"date":      "2025-01-10",
		"page":      "1",
		"page_size": "15",
	}
	for key, wantVal := range want {
		if query[key] != wantVal {
			t.Errorf("query %s = %q, want %q", key, query[key], wantVal)
		}
	}

	if page.Page != 1 || page.PageSize != 15 || page.TotalResorts != 32 || !page.HasMore {
		t.Fatalf("unexpected page metadata: %+v", page)
	}
	if len(page.Resorts) != 15 {
		t.Fatalf("expected 15 resorts, got %d", len(page.Resorts))
	}
}

func TestFetchPageDefaultsPageSize(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(pageHandler(t, &query))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	if _, err := client.FetchPage(context.Background(), PageRequest{
		Coordinate: Coordinate{Lat: 1, Lng: 2},
		Date:       "2025-02-01",
		Page:       1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if query["page_size"] != "15" {
		t.Fatalf("expected default page_size 15, got %q", query["page_size"])
	}
}

func TestFetchPageRejectsInvalidPage(t *testing.T) {
	client := NewClient(http.DefaultClient, "http://unused.invalid")
	if _, err := client.FetchPage(context.Background(), PageRequest{Page: 0}); err == nil {
		t.Fatalf("expected error for page 0")
	}
}

func TestFetchPageNonSuccessIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown area", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	_, err := client.FetchPage(context.Background(), PageRequest{
		Coordinate: Coordinate{Lat: 0, Lng: 0},
		Date:       "2025-01-10",
		Page:       1,
	})
	if err == nil {
		t.Fatalf("expected a hard failure for a non-success status")
	}
}

func TestFetchPageNullableFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"page": 1, "page_size": 15, "total_resorts": 1, "has_more": false,
			"resorts": [{
				"id": "r1", "name": "Glacier", "location": {"lat": 46.0, "lng": 7.0},
				"air_distance_km": 12.5, "distance_km": 18.0,
				"duration_driving_minutes": 25.0,
				"duration_transit_minutes": null,
				"snow_report": null,
				"weather": {
					"snowfall_prev_24h_cm": 3.5,
					"morning": {"temperature_celsius": -5, "cloud_cover_percent": 10},
					"midday": {"temperature_celsius": -2, "cloud_cover_percent": 30},
					"afternoon": {"temperature_celsius": -1, "cloud_cover_percent": 45}
				}
			}]
		}`)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), srv.URL)

	page, err := client.FetchPage(context.Background(), PageRequest{
		Coordinate: Coordinate{Lat: 46.5, Lng: 7.5},
		Date:       "2025-01-10",
		Page:       1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := page.Resorts[0]
	if r.SnowReport != nil {
		t.Errorf("expected nil snow report")
	}
	if r.DurationTransitMinutes != nil {
		t.Errorf("expected nil transit duration")
	}
	if r.DurationDrivingMinutes == nil || *r.DurationDrivingMinutes != 25 {
		t.Errorf("unexpected driving duration: %v", r.DurationDrivingMinutes)
	}
	if r.Weather == nil || r.Weather.SnowfallPrev24hCm != 3.5 {
		t.Errorf("unexpected weather: %+v", r.Weather)
	}
}
