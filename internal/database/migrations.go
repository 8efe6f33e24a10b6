package database

import (
	"context"
	"fmt"
	"log/slog"
)

// RunMigrations applies the schema. Every statement is idempotent.
func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createJourneysTable,
		createJourneysSearchIndex,
		createBookingsTable,
		createBookingsJourneyIndex,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully", "count", len(migrations))
	return nil
}

const createJourneysTable = `
CREATE TABLE IF NOT EXISTS journeys (
    id UUID PRIMARY KEY,
    bus_number VARCHAR(50) NOT NULL,
    from_location VARCHAR(255) NOT NULL,
    to_location VARCHAR(255) NOT NULL,
    journey_date DATE NOT NULL,
    start_time TIME NOT NULL,
    fare NUMERIC(10,2) NOT NULL,
    total_seats INTEGER NOT NULL,
    seats_per_row INTEGER NOT NULL DEFAULT 4,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (fare >= 0),
    CHECK (total_seats > 0),
    CHECK (seats_per_row > 0)
);`

const createJourneysSearchIndex = `
CREATE INDEX IF NOT EXISTS journeys_route_date_idx
ON journeys (lower(from_location), lower(to_location), journey_date);`

// The unique constraint is what keeps a seat from being sold twice.
const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    journey_id UUID NOT NULL REFERENCES journeys(id),
    seat_number INTEGER NOT NULL,
    booked_by VARCHAR(255) NOT NULL,
    booked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CONSTRAINT bookings_journey_seat_key UNIQUE (journey_id, seat_number),
    CHECK (seat_number > 0)
);`

const createBookingsJourneyIndex = `
CREATE INDEX IF NOT EXISTS bookings_journey_id_idx ON bookings (journey_id);`
