package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/database"
	apperrors "busline/internal/errors"
	"busline/internal/models"
)

type fakeJourneys struct {
	journeys []models.Journey
	err      error
	gotFrom  string
	gotDate  models.Date
}

func (f *fakeJourneys) Search(_ context.Context, from, _ string, date models.Date) ([]models.Journey, error) {
	f.gotFrom, f.gotDate = from, date
	return f.journeys, f.err
}

type fakeSeats struct {
	seatMap *models.SeatMap
	err     error
}

func (f *fakeSeats) ListSeats(context.Context, uuid.UUID) (*models.SeatMap, error) {
	return f.seatMap, f.err
}

type fakeBookings struct {
	err     error
	got     *models.BookSeatRequest
	booking *models.Booking
}

func (f *fakeBookings) RequestBooking(_ context.Context, req *models.BookSeatRequest) (bool, error) {
	f.got = req
	return f.err == nil, f.err
}

func (f *fakeBookings) GetBooking(context.Context, uuid.UUID) (*models.Booking, error) {
	if f.booking == nil {
		return nil, apperrors.NotFound("booking not found")
	}
	return f.booking, f.err
}

type fakeHealth struct{ status string }

func (f fakeHealth) HealthCheck(context.Context) database.HealthCheck {
	return database.HealthCheck{Status: f.status, Timestamp: time.Now()}
}

func setupRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/health", h.HealthCheck)
	api := r.Group("/api")
	{
		api.POST("/search/search", h.SearchJourneys)
		api.GET("/seats/:journeyId", h.ListSeats)
		api.POST("/seats/book", h.BookSeat)
		api.POST("/book", h.BookSeat)
		api.GET("/bookings/:bookingId", h.GetBooking)
	}
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchJourneys(t *testing.T) {
	journeys := &fakeJourneys{journeys: []models.Journey{{
		ID:          uuid.New(),
		BusNumber:   "KA-01",
		From:        "CityA",
		To:          "CityB",
		JourneyDate: models.NewDate(2024, time.January, 1),
		StartTime:   "08:00:00",
		Fare:        "250.00",
		TotalSeats:  40,
		SeatsPerRow: 4,
	}}}
	r := setupRouter(NewHandlers(journeys, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodPost, "/api/search/search",
		`{"from":"CityA","to":"CityB","journeyDate":"2024-01-01T00:00:00"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CityA", journeys.gotFrom)
	assert.Equal(t, "2024-01-01", journeys.gotDate.String())

	var got []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01", got[0]["journeyDate"])
	assert.Equal(t, "KA-01", got[0]["busNumber"])
}

func TestSearchJourneysEmptyIs404(t *testing.T) {
	r := setupRouter(NewHandlers(&fakeJourneys{journeys: []models.Journey{}}, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodPost, "/api/search/search", `{"from":"A","to":"B","journeyDate":"2024-01-01"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, msgNoJourneys, w.Body.String())
}

func TestSearchJourneysBadBody(t *testing.T) {
	r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))

	for _, body := range []string{`{"to":"B","journeyDate":"2024-01-01"}`, `{"from":"A","to":"B","journeyDate":"01/01/2024"}`, `not json`} {
		w := doJSON(r, http.MethodPost, "/api/search/search", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSearchJourneysInfrastructure(t *testing.T) {
	journeys := &fakeJourneys{err: apperrors.Infrastructure(context.DeadlineExceeded, "failed to search journeys")}
	r := setupRouter(NewHandlers(journeys, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodPost, "/api/search/search", `{"from":"A","to":"B","journeyDate":"2024-01-01"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListSeats(t *testing.T) {
	seats := &fakeSeats{seatMap: &models.SeatMap{
		Found: true,
		Seats: []models.SeatView{
			{SeatNumber: "A1", Number: 1, Row: 1, Column: 1},
			{SeatNumber: "A2", Number: 2, Row: 1, Column: 2, IsBooked: true},
		},
	}}
	r := setupRouter(NewHandlers(&fakeJourneys{}, seats, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodGet, "/api/seats/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got []models.SeatView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, seats.seatMap.Seats, got)
}

func TestListSeatsNotFoundAndBadID(t *testing.T) {
	seats := &fakeSeats{seatMap: &models.SeatMap{Found: false, Seats: []models.SeatView{}}}
	r := setupRouter(NewHandlers(&fakeJourneys{}, seats, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodGet, "/api/seats/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/seats/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookSeatOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"created", nil, http.StatusOK, msgBooked},
		{"conflict", apperrors.Conflict("seat A2 taken"), http.StatusConflict, msgAlreadyBooked},
		{"validation", apperrors.Validation("invalid seat: seat 99 is out of range 1..4"), http.StatusBadRequest, "invalid seat: seat 99 is out of range 1..4"},
		{"not found", apperrors.NotFound("journey x not found"), http.StatusNotFound, "journey x not found"},
		{"infrastructure", apperrors.Infrastructure(errors.New("connection refused"), "failed to insert booking"), http.StatusServiceUnavailable, msgUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookings := &fakeBookings{err: tt.err}
			r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, bookings, fakeHealth{}))

			w := doJSON(r, http.MethodPost, "/api/seats/book",
				`{"journeyId":"`+uuid.NewString()+`","seatNumber":2,"userEmail":"a@x.com"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestBookSeatAliasAcceptsLabel(t *testing.T) {
	bookings := &fakeBookings{}
	r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, bookings, fakeHealth{}))

	w := doJSON(r, http.MethodPost, "/api/book", `{"journeyId":"`+uuid.NewString()+`","seatNumber":"B3","userEmail":"a@x.com"}`)

	require.Equal(t, http.StatusOK, w.Code)
	_, n, err := bookings.got.SeatNumber.Resolve(models.NewLayout(40, 4))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestBookSeatBadBody(t *testing.T) {
	r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))

	w := doJSON(r, http.MethodPost, "/api/seats/book", `{"seatNumber":{"row":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidBody, w.Body.String())
}

func TestGetBooking(t *testing.T) {
	booking := &models.Booking{ID: uuid.New(), JourneyID: uuid.New(), SeatNumber: 2, SeatLabel: "A2", BookedBy: "a@x.com"}
	r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{booking: booking}, fakeHealth{}))

	w := doJSON(r, http.MethodGet, "/api/bookings/"+booking.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"seatLabel":"A2"`)

	r = setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{}))
	w = doJSON(r, http.MethodGet, "/api/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{status: "healthy"}))
	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	r = setupRouter(NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{status: "unhealthy"}))
	w = doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type fakeDependency struct{ err error }

func (f fakeDependency) HealthCheck(context.Context) error { return f.err }

func TestHealthCheckReportsDependencies(t *testing.T) {
	h := NewHandlers(&fakeJourneys{}, &fakeSeats{}, &fakeBookings{}, fakeHealth{status: "healthy"})
	h.AddDependency("redis", fakeDependency{})
	h.AddDependency("elasticsearch", fakeDependency{err: errors.New("cluster red")})

	w := doJSON(setupRouter(h), http.MethodGet, "/health", nil)

	// a degraded search backend keeps the status at 200
	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status       string `json:"status"`
		Dependencies map[string]struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Dependencies["redis"].Status)
	assert.Equal(t, "unhealthy", body.Dependencies["elasticsearch"].Status)
	assert.Equal(t, "cluster red", body.Dependencies["elasticsearch"].Error)
}
