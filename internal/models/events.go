package models

import "time"

// NATS subjects
const (
	EventBookingCreated = "booking.created"
)

// BookingCreatedEvent is published after a booking commits
type BookingCreatedEvent struct {
	BookingID  string    `json:"booking_id"`
	JourneyID  string    `json:"journey_id"`
	SeatNumber int       `json:"seat_number"`
	SeatLabel  string    `json:"seat_label"`
	BookedBy   string    `json:"booked_by"`
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
