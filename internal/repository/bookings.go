package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"busline/internal/database"
	"busline/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Exists(ctx context.Context, q database.Querier, journeyID uuid.UUID, seatNumber int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE journey_id = $1 AND seat_number = $2)`

	err := conn(r.db, q).QueryRowContext(ctx, query, journeyID, seatNumber).Scan(&exists)
	return exists, err
}

// Insert stores the booking and fills in its server-side timestamp. A
// unique_violation means another request already holds the seat.
func (r *BookingRepository) Insert(ctx context.Context, q database.Querier, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query := `
		INSERT INTO bookings (id, journey_id, seat_number, booked_by)
		VALUES ($1, $2, $3, $4)
		RETURNING booked_at`

	return conn(r.db, q).QueryRowContext(ctx, query,
		booking.ID,
		booking.JourneyID,
		booking.SeatNumber,
		booking.BookedBy,
	).Scan(&booking.BookedAt)
}

// BookedSeatNumbers returns the booked ordinals of a journey in ascending order.
func (r *BookingRepository) BookedSeatNumbers(ctx context.Context, q database.Querier, journeyID uuid.UUID) ([]int, error) {
	query := `SELECT seat_number FROM bookings WHERE journey_id = $1 ORDER BY seat_number`

	rows, err := conn(r.db, q).QueryContext(ctx, query, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		seats = append(seats, n)
	}
	return seats, rows.Err()
}

func (r *BookingRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, journey_id, seat_number, booked_by, booked_at
		FROM bookings
		WHERE id = $1`

	err := conn(r.db, q).QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.JourneyID,
		&booking.SeatNumber,
		&booking.BookedBy,
		&booking.BookedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}
