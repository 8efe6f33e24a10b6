package models

import (
	"time"

	"github.com/google/uuid"
)

// Journey represents a scheduled bus trip
type Journey struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BusNumber   string    `json:"busNumber" db:"bus_number"`
	From        string    `json:"from" db:"from_location"`
	To          string    `json:"to" db:"to_location"`
	JourneyDate Date      `json:"journeyDate" db:"journey_date"`
	StartTime   string    `json:"startTime" db:"start_time"`
	Fare        string    `json:"fare" db:"fare"`
	TotalSeats  int       `json:"totalSeats" db:"total_seats"`
	SeatsPerRow int       `json:"seatsPerRow" db:"seats_per_row"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// Layout returns the seat grid of the journey.
func (j Journey) Layout() Layout {
	return NewLayout(j.TotalSeats, j.SeatsPerRow)
}

// Booking represents a confirmed seat on a journey
type Booking struct {
	ID         uuid.UUID `json:"id" db:"id"`
	JourneyID  uuid.UUID `json:"journeyId" db:"journey_id"`
	SeatNumber int       `json:"seatNumber" db:"seat_number"`
	SeatLabel  string    `json:"seatLabel" db:"-"`
	BookedBy   string    `json:"userEmail" db:"booked_by"`
	BookedAt   time.Time `json:"bookedAt" db:"booked_at"`
}
