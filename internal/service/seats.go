package service

import (
	"context"

	"github.com/google/uuid"

	apperrors "busline/internal/errors"
	"busline/internal/models"
	"busline/internal/repository"
)

type SeatService struct {
	journeyRepo *repository.JourneyRepository
	bookingRepo *repository.BookingRepository
}

func NewSeatService(journeyRepo *repository.JourneyRepository, bookingRepo *repository.BookingRepository) *SeatService {
	return &SeatService{
		journeyRepo: journeyRepo,
		bookingRepo: bookingRepo,
	}
}

// ListSeats returns every seat slot of the journey in row-major order. An
// unknown journey yields an empty map with Found set to false.
func (s *SeatService) ListSeats(ctx context.Context, journeyID uuid.UUID) (*models.SeatMap, error) {
	seatMap := &models.SeatMap{
		JourneyID: journeyID.String(),
		Seats:     []models.SeatView{},
	}

	journey, err := s.journeyRepo.GetByID(ctx, nil, journeyID)
	if err != nil {
		return nil, apperrors.Infrastructure(err, "failed to load journey %s", journeyID)
	}
	if journey == nil {
		return seatMap, nil
	}

	booked, err := s.bookingRepo.BookedSeatNumbers(ctx, nil, journeyID)
	if err != nil {
		return nil, apperrors.Infrastructure(err, "failed to list bookings of journey %s", journeyID)
	}

	layout := journey.Layout()
	taken := make(map[int]bool, len(booked))
	for _, n := range booked {
		taken[n] = true
	}

	seatMap.Found = true
	seatMap.TotalRows = layout.Rows()
	seatMap.SeatsPerRow = layout.SeatsPerRow
	seatMap.Seats = make([]models.SeatView, 0, layout.TotalSeats)
	for n := 1; n <= layout.TotalSeats; n++ {
		id, _ := layout.SeatAt(n)
		seatMap.Seats = append(seatMap.Seats, models.SeatView{
			SeatNumber: id.Label(),
			Number:     n,
			Row:        id.Row,
			Column:     id.Column,
			IsBooked:   taken[n],
		})
	}

	return seatMap, nil
}
