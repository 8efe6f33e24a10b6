package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"busline/internal/database"
	apperrors "busline/internal/errors"
	"busline/internal/logger"
	"busline/internal/models"
	"busline/internal/repository"
)

const maxOwnerLength = 255

type BookingService struct {
	db          *database.DB
	journeyRepo *repository.JourneyRepository
	bookingRepo *repository.BookingRepository
	publisher   Publisher
	metrics     Metrics
}

func NewBookingService(db *database.DB, journeyRepo *repository.JourneyRepository, bookingRepo *repository.BookingRepository, publisher Publisher, metrics Metrics) *BookingService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &BookingService{
		db:          db,
		journeyRepo: journeyRepo,
		bookingRepo: bookingRepo,
		publisher:   publisher,
		metrics:     metrics,
	}
}

// TryBook books one seat for owner. At most one booking can ever exist per
// (journey, seat): the unique constraint on bookings decides concurrent
// attempts, and the losers get an ErrConflict. The booking is returned only
// after it has been committed.
func (s *BookingService) TryBook(ctx context.Context, journeyID uuid.UUID, seat models.SeatRef, owner string) (*models.Booking, error) {
	start := time.Now()
	owner = strings.TrimSpace(owner)

	var booking *models.Booking
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		journey, err := s.journeyRepo.GetByID(ctx, tx, journeyID)
		if err != nil {
			return apperrors.Infrastructure(err, "failed to load journey %s", journeyID)
		}
		if journey == nil {
			return apperrors.NotFound("journey %s not found", journeyID)
		}

		if err := validateOwner(owner); err != nil {
			return err
		}

		seatID, number, err := seat.Resolve(journey.Layout())
		if err != nil {
			return apperrors.Validation("%v", err)
		}

		taken, err := s.bookingRepo.Exists(ctx, tx, journeyID, number)
		if err != nil {
			return apperrors.Infrastructure(err, "failed to check seat %s", seatID)
		}
		if taken {
			return apperrors.Conflict("seat %s on journey %s is already booked", seatID, journeyID)
		}

		b := &models.Booking{
			JourneyID:  journeyID,
			SeatNumber: number,
			SeatLabel:  seatID.Label(),
			BookedBy:   owner,
		}
		if err := s.bookingRepo.Insert(ctx, tx, b); err != nil {
			return classifyInsertError(err, seatID, journeyID)
		}

		booking = b
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if !errors.As(err, &appErr) {
			// begin/commit failures
			err = apperrors.Infrastructure(err, "booking transaction failed")
		}
		s.metrics.ObserveBooking(apperrors.OutcomeOf(err), time.Since(start))
		s.logRejected(ctx, journeyID, seat, err)
		return nil, err
	}

	s.metrics.ObserveBooking(apperrors.OutcomeCreated, time.Since(start))
	logger.WithContext(ctx).Info("Seat booked",
		"booking_id", booking.ID,
		"journey_id", journeyID,
		"seat", booking.SeatLabel)

	s.publishCreated(ctx, booking)
	return booking, nil
}

// RequestBooking reports true iff a booking was durably created. The error
// carries the outcome kind for callers that need to tell failures apart.
func (s *BookingService) RequestBooking(ctx context.Context, req *models.BookSeatRequest) (bool, error) {
	journeyID, err := uuid.Parse(strings.TrimSpace(req.JourneyID))
	if err != nil {
		return false, apperrors.Validation("invalid journey id %q", req.JourneyID)
	}

	ctx = logger.ContextWithOwner(ctx, strings.TrimSpace(req.UserEmail))
	if _, err := s.TryBook(ctx, journeyID, req.SeatNumber, req.UserEmail); err != nil {
		return false, err
	}
	return true, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperrors.Infrastructure(err, "failed to get booking %s", id)
	}
	if booking == nil {
		return nil, apperrors.NotFound("booking %s not found", id)
	}

	journey, err := s.journeyRepo.GetByID(ctx, nil, booking.JourneyID)
	if err != nil {
		return nil, apperrors.Infrastructure(err, "failed to load journey %s", booking.JourneyID)
	}
	if journey != nil {
		if seatID, err := journey.Layout().SeatAt(booking.SeatNumber); err == nil {
			booking.SeatLabel = seatID.Label()
		}
	}

	return booking, nil
}

func validateOwner(owner string) error {
	if owner == "" {
		return apperrors.Validation("booking owner is required")
	}
	if len(owner) > maxOwnerLength {
		return apperrors.Validation("booking owner exceeds %d characters", maxOwnerLength)
	}
	return nil
}

func classifyInsertError(err error, seat models.SeatID, journeyID uuid.UUID) error {
	switch {
	case repository.IsUniqueViolation(err):
		return apperrors.Conflict("seat %s on journey %s is already booked", seat, journeyID)
	case repository.IsForeignKeyViolation(err):
		return apperrors.NotFound("journey %s not found", journeyID)
	default:
		return apperrors.Infrastructure(err, "failed to insert booking")
	}
}

func (s *BookingService) logRejected(ctx context.Context, journeyID uuid.UUID, seat models.SeatRef, err error) {
	l := logger.WithContext(ctx).With(
		"journey_id", journeyID,
		"seat", seat.String(),
		"outcome", apperrors.OutcomeOf(err),
		"error", err)

	if apperrors.IsInfrastructure(err) {
		l.Error("Booking failed")
		return
	}
	l.Info("Booking rejected")
}

func (s *BookingService) publishCreated(ctx context.Context, booking *models.Booking) {
	if s.publisher == nil {
		return
	}

	event := models.BookingCreatedEvent{
		BookingID:  booking.ID.String(),
		JourneyID:  booking.JourneyID.String(),
		SeatNumber: booking.SeatNumber,
		SeatLabel:  booking.SeatLabel,
		BookedBy:   booking.BookedBy,
		RequestID:  logger.RequestIDFrom(ctx),
		Timestamp:  booking.BookedAt,
	}

	if err := s.publisher.Publish(models.EventBookingCreated, event); err != nil {
		// the booking is already committed
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err,
			"booking_id", booking.ID,
			"event_type", models.EventBookingCreated)
	}
}
