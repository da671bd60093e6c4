// Package results is the pure view side of a search: it filters and sorts
// already-fetched resort records without mutating them, and decides when
// another page should be loaded. Nothing here performs I/O.
package results

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/slopefinder/slopefinder/internal/resorts"
)

// SortKey selects the field the visible list is ordered by. Exactly one
// key is active at a time.
type SortKey string

const (
	SortProximity SortKey = "proximity" // straight-line distance
	SortDriving   SortKey = "driving"   // driving minutes
	SortTransit   SortKey = "transit"   // transit minutes
)

// ParseSortKey maps a request parameter to a SortKey. An empty string
// selects proximity.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "":
		return SortProximity, nil
	case SortProximity, SortDriving, SortTransit:
		return SortKey(s), nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// FilterState is the set of independent filter toggles. The zero value
// filters nothing.
type FilterState struct {
	GoodWeather bool // all three day parts calm
	FreshSnow   bool // snowfall in the prior 24h
	LiftsOpen   bool // more than 85% of lifts open
	MinPistes   bool // at least MinPistesKm of pistes
}

// Thresholds for the lift and piste filters.
const (
	LiftsOpenRatio = 0.85
	MinPistesKm    = 20.0
	maxCloudCover  = 75
)

var (
	decimalRe = regexp.MustCompile(`\d+(?:\.\d+)?`)
	liftsRe   = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d+)\s*$`)
)

// Visible computes the filtered, sorted view over accumulated records.
// Filtering preserves the accumulation (arrival) order and is applied
// before the stable sort, so records with equal sort values keep their
// relative arrival order. The input slice is never modified.
func Visible(records []resorts.ResortRecord, f FilterState, key SortKey) []resorts.ResortRecord {
	visible := make([]resorts.ResortRecord, 0, len(records))
	for _, r := range records {
		if matches(r, f) {
			visible = append(visible, r)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return sortValue(visible[i], key) < sortValue(visible[j], key)
	})

	return visible
}

func matches(r resorts.ResortRecord, f FilterState) bool {
	if f.GoodWeather && !hasGoodWeather(r.Weather) {
		return false
	}
	if f.FreshSnow && (r.Weather == nil || r.Weather.SnowfallPrev24hCm <= 0) {
		return false
	}
	if f.LiftsOpen {
		ratio, ok := liftRatio(r.SnowReport)
		if !ok || ratio <= LiftsOpenRatio {
			return false
		}
	}
	if f.MinPistes && pisteKm(r.SnowReport) < MinPistesKm {
		return false
	}
	return true
}

// hasGoodWeather requires every day part to be calm: limited cloud cover
// and neither precipitation nor snowfall. One bad day part fails the
// whole resort.
func hasGoodWeather(w *resorts.Weather) bool {
	if w == nil {
		return false
	}
	for _, p := range []resorts.DayPart{w.Morning, w.Midday, w.Afternoon} {
		if p.CloudCoverPercent > maxCloudCover || p.PrecipitationMm != 0 || p.SnowfallCm != 0 {
			return false
		}
	}
	return true
}

// liftRatio parses the "open/total" lift string (spacing optional). A
// missing report, unparsable string or zero total yields ok=false.
func liftRatio(report *resorts.SnowReport) (float64, bool) {
	if report == nil {
		return 0, false
	}
	m := liftsRe.FindStringSubmatch(report.Lifts)
	if m == nil {
		return 0, false
	}
	open, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	total, err := strconv.ParseFloat(m[2], 64)
	if err != nil || total == 0 {
		return 0, false
	}
	return open / total, true
}

// pisteKm extracts the first decimal number from the piste-length string.
// Missing or unparsable values count as zero.
func pisteKm(report *resorts.SnowReport) float64 {
	if report == nil {
		return 0
	}
	m := decimalRe.FindString(report.PistesKm)
	if m == "" {
		return 0
	}
	km, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return km
}

// sortValue returns the record's value for the given key. Records missing
// the relevant field sort after every record that has one.
func sortValue(r resorts.ResortRecord, key SortKey) float64 {
	switch key {
	case SortDriving:
		if r.DurationDrivingMinutes == nil {
			return math.Inf(1)
		}
		return *r.DurationDrivingMinutes
	case SortTransit:
		if r.DurationTransitMinutes == nil {
			return math.Inf(1)
		}
		return *r.DurationTransitMinutes
	default:
		return r.AirDistanceKm
	}
}

// ShouldLoadMore reports whether the render layer reaching visibleIndex
// in a visible list of visibleLen items should fetch another page. The
// trigger sits on the second-to-last visible item, so aggressive filters
// pull pages in sooner. Never true while a fetch is in flight or when the
// service has no more pages.
func ShouldLoadMore(hasMore, inFlight bool, visibleIndex, visibleLen int) bool {
	if !hasMore || inFlight || visibleLen == 0 || visibleIndex < 0 {
		return false
	}
	return visibleLen-visibleIndex <= 2
}
