package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"busline/internal/database"
	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
)

// Response bodies the browser client shows verbatim.
const (
	msgBooked          = "Seat booked successfully."
	msgAlreadyBooked   = "Seat is already booked."
	msgUnavailable     = "Service temporarily unavailable. Please retry."
	msgInvalidBody     = "Invalid request body."
	msgNoJourneys      = "No journeys found."
	msgNoSeats         = "No seats found for this journey."
	msgInvalidJourney  = "Invalid journey id."
	msgInvalidBooking  = "Invalid booking id."
	msgBookingNotFound = "Booking not found."
)

type JourneySearcher interface {
	Search(ctx context.Context, from, to string, date models.Date) ([]models.Journey, error)
}

type SeatLister interface {
	ListSeats(ctx context.Context, journeyID uuid.UUID) (*models.SeatMap, error)
}

type BookingRequester interface {
	RequestBooking(ctx context.Context, req *models.BookSeatRequest) (bool, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) database.HealthCheck
}

// DependencyChecker is an optional backend reported by /health.
type DependencyChecker interface {
	HealthCheck(ctx context.Context) error
}

type dependency struct {
	name    string
	checker DependencyChecker
}

type Handlers struct {
	journeys JourneySearcher
	seats    SeatLister
	bookings BookingRequester
	health   HealthChecker
	deps     []dependency
}

func NewHandlers(journeys JourneySearcher, seats SeatLister, bookings BookingRequester, health HealthChecker) *Handlers {
	return &Handlers{
		journeys: journeys,
		seats:    seats,
		bookings: bookings,
		health:   health,
	}
}

// AddDependency registers a backend for the health report. Its state is
// informational; only the database decides the status code.
func (h *Handlers) AddDependency(name string, checker DependencyChecker) {
	h.deps = append(h.deps, dependency{name: name, checker: checker})
}

func text(c *gin.Context, status int, msg string) {
	c.Data(status, "text/plain; charset=utf-8", []byte(msg))
}

// respondError maps a core outcome to a status code. Only infrastructure
// failures are attached to the gin context for the request logger.
func respondError(c *gin.Context, err error) {
	switch apperrors.OutcomeOf(err) {
	case apperrors.OutcomeConflict:
		text(c, http.StatusConflict, msgAlreadyBooked)
	case apperrors.OutcomeNotFound:
		text(c, http.StatusNotFound, err.Error())
	case apperrors.OutcomeValidation:
		text(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("Request failed", "error", err)
		text(c, http.StatusServiceUnavailable, msgUnavailable)
	}
}

// HealthCheck - GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	hc := h.health.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if !hc.Healthy() {
		status = http.StatusServiceUnavailable
	}
	deps := make(gin.H, len(h.deps))
	for _, d := range h.deps {
		if err := d.checker.HealthCheck(c.Request.Context()); err != nil {
			logger.WithContext(c.Request.Context()).Warn("Dependency unhealthy", "dependency", d.name, "error", err)
			deps[d.name] = gin.H{"status": "unhealthy", "error": err.Error()}
			continue
		}
		deps[d.name] = gin.H{"status": "healthy"}
	}

	c.JSON(status, gin.H{
		"status":       hc.Status,
		"database":     hc,
		"dependencies": deps,
	})
}
