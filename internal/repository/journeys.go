package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"busline/internal/database"
	"busline/internal/models"
)

const journeyColumns = `
	id, bus_number, from_location, to_location, journey_date,
	to_char(start_time, 'HH24:MI:SS'), fare::text, total_seats, seats_per_row, created_at`

type JourneyRepository struct {
	db *database.DB
}

func NewJourneyRepository(db *database.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*models.Journey, error) {
	j := &models.Journey{}
	err := row.Scan(
		&j.ID,
		&j.BusNumber,
		&j.From,
		&j.To,
		&j.JourneyDate,
		&j.StartTime,
		&j.Fare,
		&j.TotalSeats,
		&j.SeatsPerRow,
		&j.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// GetByID returns nil, nil when the journey does not exist.
func (r *JourneyRepository) GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*models.Journey, error) {
	query := `SELECT` + journeyColumns + ` FROM journeys WHERE id = $1`

	j, err := scanJourney(conn(r.db, q).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

// Search matches origin and destination case-insensitively and the date exactly.
func (r *JourneyRepository) Search(ctx context.Context, from, to string, date models.Date) ([]models.Journey, error) {
	query := `SELECT` + journeyColumns + `
		FROM journeys
		WHERE lower(from_location) = lower($1)
		  AND lower(to_location) = lower($2)
		  AND journey_date = $3
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, strings.TrimSpace(from), strings.TrimSpace(to), date)
	if err != nil {
		return nil, err
	}
	return collectJourneys(rows)
}

// ListAll returns every journey in insertion order. Used for reindexing.
func (r *JourneyRepository) ListAll(ctx context.Context) ([]models.Journey, error) {
	query := `SELECT` + journeyColumns + ` FROM journeys ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectJourneys(rows)
}

func collectJourneys(rows *sql.Rows) ([]models.Journey, error) {
	defer rows.Close()

	journeys := []models.Journey{}
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, err
		}
		journeys = append(journeys, *j)
	}
	return journeys, rows.Err()
}

func (r *JourneyRepository) Create(ctx context.Context, q database.Querier, j *models.Journey) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.SeatsPerRow <= 0 {
		j.SeatsPerRow = models.DefaultSeatsPerRow
	}

	query := `
		INSERT INTO journeys (id, bus_number, from_location, to_location, journey_date,
		                      start_time, fare, total_seats, seats_per_row)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return conn(r.db, q).QueryRowContext(ctx, query,
		j.ID,
		j.BusNumber,
		j.From,
		j.To,
		j.JourneyDate,
		j.StartTime,
		j.Fare,
		j.TotalSeats,
		j.SeatsPerRow,
	).Scan(&j.CreatedAt)
}
