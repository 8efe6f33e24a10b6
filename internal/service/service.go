package service

import (
	"context"
	"time"

	"busline/internal/database"
	apperrors "busline/internal/errors"
	"busline/internal/models"
	"busline/internal/repository"
)

// Publisher delivers domain events. Implemented by messaging.NATSClient.
type Publisher interface {
	Publish(subject string, data any) error
}

// JourneyIndex is an alternative search backend. Implemented by search.ElasticsearchClient.
type JourneyIndex interface {
	SearchJourneys(ctx context.Context, from, to string, date models.Date) ([]models.Journey, error)
}

// SearchCache stores search results. Implemented by cache.SearchCache.
type SearchCache interface {
	GetJourneys(ctx context.Context, key string) ([]models.Journey, bool, error)
	SetJourneys(ctx context.Context, key string, journeys []models.Journey) error
}

// Metrics receives core outcomes. Implemented by metrics.Registry.
type Metrics interface {
	ObserveBooking(outcome apperrors.Outcome, elapsed time.Duration)
	ObserveSearch(source string)
}

type Options struct {
	Index     JourneyIndex
	Cache     SearchCache
	Publisher Publisher
	Metrics   Metrics
}

type Services struct {
	Journeys *JourneyService
	Seats    *SeatService
	Bookings *BookingService
}

func NewServices(db *database.DB, repos *repository.Repositories, opts Options) *Services {
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	return &Services{
		Journeys: NewJourneyService(repos.Journeys, opts.Index, opts.Cache, opts.Metrics),
		Seats:    NewSeatService(repos.Journeys, repos.Bookings),
		Bookings: NewBookingService(db, repos.Journeys, repos.Bookings, opts.Publisher, opts.Metrics),
	}
}

type noopMetrics struct{}

func (noopMetrics) ObserveBooking(apperrors.Outcome, time.Duration) {}
func (noopMetrics) ObserveSearch(string)                            {}
