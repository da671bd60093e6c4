package resorts

// Coordinate is a point in floating-point degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SnowReport carries the scraped snow-report values for a resort. All fields
// arrive as free-form strings and may be empty; the resort service passes
// them through unparsed.
type SnowReport struct {
	PistesKm    string `json:"pistes_km"`     // e.g. "45 km"
	Lifts       string `json:"lifts"`         // e.g. "9 / 10"
	SnowDepthCm string `json:"snow_depth_cm"` // e.g. "80 cm"
	LastUpdated string `json:"last_updated"`
}

// DayPart is the aggregated weather for one of the three fixed day parts
// (morning 8-10, midday 11-13, afternoon 14-16, local time).
type DayPart struct {
	Time               string  `json:"time"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	PrecipitationMm    float64 `json:"precipitation_mm"`
	SnowfallCm         float64 `json:"snowfall_cm"`
	CloudCoverPercent  int     `json:"cloud_cover_percent"`
	VisibilityM        float64 `json:"visibility_m"`
}

// Weather is the per-resort weather for the searched date.
type Weather struct {
	SnowfallPrev24hCm float64 `json:"snowfall_prev_24h_cm"`
	Morning           DayPart `json:"morning"`
	Midday            DayPart `json:"midday"`
	Afternoon         DayPart `json:"afternoon"`
}

// ResortRecord is one resort as returned by the resort-data service.
// Records are immutable after fetch and identified by ID.
type ResortRecord struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Location      Coordinate `json:"location"`
	ElevationM    float64    `json:"elevation_m"`
	AirDistanceKm float64    `json:"air_distance_km"`
	DistanceKm    float64    `json:"distance_km"`

	// Route durations are nullable: the routing service may have no
	// driving or no transit connection for a resort.
	DurationDrivingMinutes *float64 `json:"duration_driving_minutes"`
	DurationTransitMinutes *float64 `json:"duration_transit_minutes"`

	SnowReport *SnowReport `json:"snow_report"`
	Weather    *Weather    `json:"weather"`
}

// ResultPage is one page of resort records plus pagination metadata.
type ResultPage struct {
	Page         int            `json:"page"`
	PageSize     int            `json:"page_size"`
	TotalResorts int            `json:"total_resorts"`
	HasMore      bool           `json:"has_more"`
	Resorts      []ResortRecord `json:"resorts"`
}
