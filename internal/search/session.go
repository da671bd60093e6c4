// Package search owns the lifecycle of one search: reconciling the
// location input (typed text, picked suggestion or GPS fix) into a single
// coordinate, fetching pages from the resort-data service, and
// accumulating the results the view packages read from.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/slopefinder/slopefinder/internal/geocode"
	"github.com/slopefinder/slopefinder/internal/resorts"
	"github.com/slopefinder/slopefinder/internal/results"
)

// GPSPlaceholder is the label shown in the location field while GPS mode
// is active. It must never be geocoded as free text.
const GPSPlaceholder = "Current location"

// ErrNoInput means no coordinate could be produced: the location field is
// empty, or a GPS attempt has not delivered a fix yet. The search aborts
// silently; nothing is fetched and nothing is surfaced.
var ErrNoInput = errors.New("no location input")

// NoMatchError means the geocoder found nothing for the typed text. The
// query is kept so it can be named in the user-facing notice.
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no location found for %q", e.Query)
}

// GPSStatus tracks one GPS attempt. Transitions are monotonic per
// attempt: idle -> locating -> success or error.
type GPSStatus int

const (
	GPSIdle GPSStatus = iota
	GPSLocating
	GPSSuccess
	GPSError
)

func (s GPSStatus) String() string {
	switch s {
	case GPSLocating:
		return "locating"
	case GPSSuccess:
		return "success"
	case GPSError:
		return "error"
	default:
		return "idle"
	}
}

// Status is a point-in-time snapshot of a session's fetch state.
type Status struct {
	Page         int
	TotalResorts int
	HasMore      bool
	InFlight     bool
	Accumulated  int
	GPS          GPSStatus
}

// Session is one search for a date: location input state plus the
// accumulated pages. Accumulated records keep their arrival order and are
// only ever reset by starting a new search, never by filter or sort
// changes. All mutation goes through the session's methods; the mutex
// covers concurrent callers of the HTTP surface.
type Session struct {
	id       string
	date     string // YYYY-MM-DD
	pageSize int
	resorts  *resorts.Client
	geocoder *geocode.Client

	mu sync.Mutex

	// Location input state.
	text        string
	resolved    *resorts.Coordinate // coordinate cached for resolvedFor
	resolvedFor string
	gpsActive   bool
	gpsStatus   GPSStatus
	gpsFix      *resorts.Coordinate

	// Fetch state for the current search generation.
	coord       resorts.Coordinate
	page        int
	accumulated []resorts.ResortRecord
	total       int
	hasMore     bool
	inFlight    bool
	generation  uint64

	lastAccess time.Time
}

// New creates a session for the given calendar date.
func New(id, date string, rc *resorts.Client, gc *geocode.Client, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = resorts.DefaultPageSize
	}
	return &Session{
		id:         id,
		date:       date,
		pageSize:   pageSize,
		resorts:    rc,
		geocoder:   gc,
		lastAccess: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Date() string { return s.date }

// SetText records typed location text and leaves GPS mode.
func (s *Session) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.gpsActive = false
}

// UseSuggestion adopts a picked autocomplete suggestion: the coordinate
// is cached for the suggestion text, so a subsequent search reuses it
// without re-geocoding.
func (s *Session) UseSuggestion(displayName string, coord resorts.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = displayName
	s.resolved = &coord
	s.resolvedFor = displayName
	s.gpsActive = false
}

// BeginGPS starts a GPS attempt. A new attempt while one is pending is
// not prevented; it simply restarts the status machine.
func (s *Session) BeginGPS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpsActive = true
	s.gpsStatus = GPSLocating
	s.text = GPSPlaceholder
}

// ReportGPSFix records a successful GPS reading.
func (s *Session) ReportGPSFix(coord resorts.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpsStatus = GPSSuccess
	s.gpsFix = &coord
}

// ReportGPSError records a denied or failed GPS attempt and clears the
// location field so the user falls back to manual entry.
func (s *Session) ReportGPSError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gpsStatus = GPSError
	s.text = ""
}

// Start resolves the location input and fetches page 1. On success the
// previous accumulation is discarded and any still-outstanding fetch from
// the old search is invalidated. Resolution failures leave the
// accumulated results untouched; a failed page-1 fetch is logged and
// leaves the session empty but usable.
func (s *Session) Start(ctx context.Context) error {
	coord, err := s.resolveLocation(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.coord = coord
	s.page = 1
	s.accumulated = nil
	s.total = 0
	s.hasMore = false
	s.inFlight = true
	s.mu.Unlock()

	s.fetch(ctx, gen, coord, 1)
	return nil
}

// resolveLocation produces exactly one coordinate from the three input
// sources, in priority order: current GPS fix, coordinate already
// resolved for the current text, fresh geocoding of the text.
func (s *Session) resolveLocation(ctx context.Context) (resorts.Coordinate, error) {
	s.mu.Lock()
	if s.gpsActive && s.gpsStatus == GPSSuccess && s.gpsFix != nil {
		coord := *s.gpsFix
		s.mu.Unlock()
		return coord, nil
	}
	text := s.text
	if s.resolved != nil && text != "" && s.resolvedFor == text {
		coord := *s.resolved
		s.mu.Unlock()
		return coord, nil
	}
	s.mu.Unlock()

	if text == "" || text == GPSPlaceholder {
		return resorts.Coordinate{}, ErrNoInput
	}

	coord, ok := s.geocoder.Resolve(ctx, text)
	if !ok {
		return resorts.Coordinate{}, &NoMatchError{Query: text}
	}

	s.mu.Lock()
	s.resolved = &coord
	s.resolvedFor = text
	s.mu.Unlock()
	return coord, nil
}

// LoadNextPage fetches the next page for the current search. It is a
// no-op (returning false) while a fetch is already in flight or when the
// service reported no more pages; concurrent triggers are ignored, not
// queued.
func (s *Session) LoadNextPage(ctx context.Context) bool {
	s.mu.Lock()
	if s.inFlight || !s.hasMore {
		s.mu.Unlock()
		return false
	}
	s.page++
	page := s.page
	gen := s.generation
	coord := s.coord
	s.inFlight = true
	s.mu.Unlock()

	s.fetch(ctx, gen, coord, page)
	return true
}

// fetch requests one page and applies the response only if the session is
// still on the same search generation; a page from a superseded search is
// dropped on arrival. Fetch failures are logged and leave the
// accumulation untouched.
func (s *Session) fetch(ctx context.Context, gen uint64, coord resorts.Coordinate, page int) {
	res, err := s.resorts.FetchPage(ctx, resorts.PageRequest{
		Coordinate: coord,
		Date:       s.date,
		Page:       page,
		PageSize:   s.pageSize,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer search owns the session now.
		return
	}

	s.inFlight = false
	if err != nil {
		log.Printf("search %s: page %d fetch failed: %v", s.id, page, err)
		return
	}

	s.accumulated = append(s.accumulated, res.Resorts...)
	s.total = res.TotalResorts
	s.hasMore = res.HasMore
}

// View returns the filtered, sorted visible list plus whether the render
// layer should load another page once its trigger item (the
// second-to-last visible one) scrolls into view. Pure with respect to the
// accumulation: calling it never fetches and never mutates.
func (s *Session) View(f results.FilterState, key results.SortKey) ([]resorts.ResortRecord, bool) {
	s.mu.Lock()
	records := s.accumulated
	hasMore := s.hasMore
	inFlight := s.inFlight
	s.mu.Unlock()

	visible := results.Visible(records, f, key)
	more := results.ShouldLoadMore(hasMore, inFlight, len(visible)-2, len(visible))
	return visible, more
}

// Status reports the session's current fetch state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Page:         s.page,
		TotalResorts: s.total,
		HasMore:      s.hasMore,
		InFlight:     s.inFlight,
		Accumulated:  len(s.accumulated),
		GPS:          s.gpsStatus,
	}
}

// Touch marks the session as recently used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = time.Now()
}

// LastAccess returns the time of the last Touch (or creation).
func (s *Session) LastAccess() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccess
}
