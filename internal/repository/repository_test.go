package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busline/internal/database"
	"busline/internal/models"
)

var journeyRowColumns = []string{
	"id", "bus_number", "from_location", "to_location", "journey_date",
	"start_time", "fare", "total_seats", "seats_per_row", "created_at",
}

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &database.DB{DB: db}, mock
}

func TestJourneyGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJourneyRepository(db)
	id := uuid.New()
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM journeys WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(journeyRowColumns).
			AddRow(id.String(), "KA-01", "CityA", "CityB", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				"08:30:00", "450.00", 40, 4, created))

	j, err := repo.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	require.NotNil(t, j)
	assert.Equal(t, id, j.ID)
	assert.Equal(t, "CityA", j.From)
	assert.Equal(t, "2024-01-01", j.JourneyDate.String())
	assert.Equal(t, "08:30:00", j.StartTime)
	assert.Equal(t, "450.00", j.Fare)
	assert.Equal(t, 10, j.Layout().Rows())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneyGetByIDMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJourneyRepository(db)

	mock.ExpectQuery(`FROM journeys WHERE id = \$1`).WillReturnError(sql.ErrNoRows)

	j, err := repo.GetByID(context.Background(), nil, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, j)
}

func TestJourneySearchTrimsAndOrders(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJourneyRepository(db)
	date := models.NewDate(2024, time.January, 1)
	first, second := uuid.New(), uuid.New()

	mock.ExpectQuery(`lower\(from_location\) = lower\(\$1\).*ORDER BY created_at, id`).
		WithArgs("CityA", "CityB", "2024-01-01").
		WillReturnRows(sqlmock.NewRows(journeyRowColumns).
			AddRow(first.String(), "KA-01", "CityA", "CityB", "2024-01-01", "08:00:00", "100.00", 4, 4, time.Now()).
			AddRow(second.String(), "KA-02", "citya", "cityb", "2024-01-01", "20:00:00", "120.50", 8, 4, time.Now()))

	journeys, err := repo.Search(context.Background(), "  CityA ", "CityB", date)
	require.NoError(t, err)
	require.Len(t, journeys, 2)
	assert.Equal(t, first, journeys[0].ID)
	assert.Equal(t, second, journeys[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneySearchEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJourneyRepository(db)

	mock.ExpectQuery(`FROM journeys`).WillReturnRows(sqlmock.NewRows(journeyRowColumns))

	journeys, err := repo.Search(context.Background(), "X", "Y", models.NewDate(2024, time.May, 5))
	require.NoError(t, err)
	assert.NotNil(t, journeys)
	assert.Empty(t, journeys)
}

func TestJourneyCreateDefaultsLayout(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJourneyRepository(db)

	mock.ExpectQuery(`INSERT INTO journeys`).
		WithArgs(sqlmock.AnyArg(), "KA-07", "CityA", "CityB", "2024-03-10", "07:15:00", "99.99", 40, models.DefaultSeatsPerRow).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	j := &models.Journey{
		BusNumber:   "KA-07",
		From:        "CityA",
		To:          "CityB",
		JourneyDate: models.NewDate(2024, time.March, 10),
		StartTime:   "07:15:00",
		Fare:        "99.99",
		TotalSeats:  40,
	}
	require.NoError(t, repo.Create(context.Background(), nil, j))
	assert.NotEqual(t, uuid.Nil, j.ID)
	assert.Equal(t, models.DefaultSeatsPerRow, j.SeatsPerRow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingExistsAndInsertInsideTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	journeyID := uuid.New()
	bookedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(journeyID, 2).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO bookings`).
		WithArgs(sqlmock.AnyArg(), journeyID, 2, "a@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"booked_at"}).AddRow(bookedAt))
	mock.ExpectCommit()

	booking := &models.Booking{JourneyID: journeyID, SeatNumber: 2, BookedBy: "a@x.com"}
	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		exists, err := repo.Exists(context.Background(), tx, journeyID, 2)
		if err != nil {
			return err
		}
		assert.False(t, exists)
		return repo.Insert(context.Background(), tx, booking)
	})

	require.NoError(t, err)
	assert.Equal(t, bookedAt, booking.BookedAt)
	assert.NotEqual(t, uuid.Nil, booking.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_journey_seat_key"})
	mock.ExpectRollback()

	err := db.WithTx(context.Background(), func(tx *sql.Tx) error {
		return repo.Insert(context.Background(), tx, &models.Booking{JourneyID: uuid.New(), SeatNumber: 1, BookedBy: "a"})
	})

	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedSeatNumbers(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	journeyID := uuid.New()

	mock.ExpectQuery(`SELECT seat_number FROM bookings WHERE journey_id = \$1 ORDER BY seat_number`).
		WithArgs(journeyID).
		WillReturnRows(sqlmock.NewRows([]string{"seat_number"}).AddRow(2).AddRow(7))

	seats, err := repo.BookedSeatNumbers(context.Background(), nil, journeyID)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 7}, seats)
}

func TestBookingGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	id, journeyID := uuid.New(), uuid.New()

	mock.ExpectQuery(`FROM bookings\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "journey_id", "seat_number", "booked_by", "booked_at"}).
			AddRow(id.String(), journeyID.String(), 3, "a@x.com", time.Now()))

	b, err := repo.GetByID(context.Background(), nil, id)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, journeyID, b.JourneyID)
	assert.Equal(t, 3, b.SeatNumber)

	mock.ExpectQuery(`FROM bookings`).WillReturnError(sql.ErrNoRows)
	b, err = repo.GetByID(context.Background(), nil, uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, b)
}

func TestErrorClassification(t *testing.T) {
	unique := &pq.Error{Code: "23505"}
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("duplicate key value")))
	assert.False(t, IsForeignKeyViolation(nil))
}
