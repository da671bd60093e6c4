package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/slopefinder/slopefinder/internal/geocode"
	"github.com/slopefinder/slopefinder/internal/resorts"
	"github.com/slopefinder/slopefinder/internal/results"
	"github.com/slopefinder/slopefinder/internal/search"
	"github.com/slopefinder/slopefinder/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions *store.SessionStore, geocoder *geocode.Client, resortClient *resorts.Client, pageSize int) {
	v1 := app.Group("/api/v1")

	// Create a search: resolve the location input and fetch page 1.
	v1.Post("/searches", func(c *fiber.Ctx) error {
		var req createSearchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !req.UseGPS && req.Lat != nil && req.LocationText == "" {
			return fiber.NewError(fiber.StatusBadRequest, "a coordinate without use_gps requires location_text")
		}

		sess := search.New(uuid.NewString(), req.Date, resortClient, geocoder, pageSize)

		switch {
		case req.UseGPS:
			sess.BeginGPS()
			if req.Lat != nil && req.Lng != nil {
				sess.ReportGPSFix(resorts.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
			}
		case req.Lat != nil && req.Lng != nil:
			// The caller already resolved the text, e.g. by picking a
			// suggestion; reuse the coordinate without re-geocoding.
			sess.UseSuggestion(req.LocationText, resorts.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
		default:
			sess.SetText(req.LocationText)
		}

		err := sess.Start(c.UserContext())

		var noMatch *search.NoMatchError
		switch {
		case errors.As(err, &noMatch):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   true,
				"message": "location could not be resolved",
				"query":   noMatch.Query,
			})
		case errors.Is(err, search.ErrNoInput):
			if !req.UseGPS {
				return fiber.NewError(fiber.StatusBadRequest, "no location input")
			}
			// GPS attempt still locating; the session waits for a fix
			// reported via the gps endpoint.
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start search")
		}

		sessions.Put(sess)
		return c.Status(fiber.StatusCreated).JSON(statusResponse(sess))
	})

	// Report the outcome of a GPS attempt; a fix triggers the search.
	v1.Post("/searches/:id/gps", func(c *fiber.Ctx) error {
		sess, err := getSession(c, sessions)
		if err != nil {
			return err
		}

		var req gpsReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if req.Failed {
			sess.ReportGPSError()
			return c.JSON(statusResponse(sess))
		}
		if req.Lat == nil || req.Lng == nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng are required unless failed is set")
		}

		sess.ReportGPSFix(resorts.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
		if err := sess.Start(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start search")
		}

		return c.JSON(statusResponse(sess))
	})

	// Load the next page. A trigger while a fetch is in flight is
	// ignored, not queued.
	v1.Post("/searches/:id/more", func(c *fiber.Ctx) error {
		sess, err := getSession(c, sessions)
		if err != nil {
			return err
		}

		started := sess.LoadNextPage(c.UserContext())
		if !started && sess.Status().InFlight {
			return c.Status(fiber.StatusAccepted).JSON(statusResponse(sess))
		}
		return c.JSON(statusResponse(sess))
	})

	// The visible (filtered + sorted) list. View parameters live in the
	// query string and are never stored, so toggling them recomputes the
	// view from already-fetched data and can never trigger a fetch.
	v1.Get("/searches/:id", func(c *fiber.Ctx) error {
		sess, err := getSession(c, sessions)
		if err != nil {
			return err
		}

		sortKey, err := results.ParseSortKey(c.Query("sort"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		filters := results.FilterState{
			GoodWeather: c.QueryBool("good_weather"),
			FreshSnow:   c.QueryBool("fresh_snow"),
			LiftsOpen:   c.QueryBool("lifts_open"),
			MinPistes:   c.QueryBool("min_pistes"),
		}

		visible, loadMore := sess.View(filters, sortKey)
		if visible == nil {
			visible = []resorts.ResortRecord{}
		}

		st := sess.Status()
		return c.JSON(fiber.Map{
			"search_id":        sess.ID(),
			"date":             sess.Date(),
			"page":             st.Page,
			"total_resorts":    st.TotalResorts,
			"has_more":         st.HasMore,
			"should_load_more": loadMore,
			"resorts":          visible,
		})
	})

	// Address autocomplete; fails soft to an empty list.
	v1.Get("/suggest", func(c *fiber.Ctx) error {
		places := geocoder.Suggest(c.UserContext(), c.Query("q"))
		if places == nil {
			places = []geocode.Place{}
		}
		return c.JSON(places)
	})
}

func getSession(c *fiber.Ctx, sessions *store.SessionStore) (*search.Session, error) {
	sess, err := sessions.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "search session not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to load search session")
	}
	return sess, nil
}

func statusResponse(sess *search.Session) fiber.Map {
	st := sess.Status()
	return fiber.Map{
		"search_id":     sess.ID(),
		"date":          sess.Date(),
		"page":          st.Page,
		"total_resorts": st.TotalResorts,
		"has_more":      st.HasMore,
		"in_flight":     st.InFlight,
		"result_count":  st.Accumulated,
		"gps_status":    st.GPS.String(),
	}
}

// createSearchRequest carries the location input and date for a new
// search. Exactly one location source applies: GPS mode, an already
// resolved coordinate for the given text, or free text to geocode.
type createSearchRequest struct {
	LocationText string   `json:"location_text"`
	Lat          *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng          *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
	UseGPS       bool     `json:"use_gps"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
}

// gpsReportRequest is the outcome of a GPS attempt: a fix, or a denial.
type gpsReportRequest struct {
	Lat    *float64 `json:"lat" validate:"omitempty,min=-90,max=90"`
	Lng    *float64 `json:"lng" validate:"omitempty,min=-180,max=180"`
	Failed bool     `json:"failed"`
}
