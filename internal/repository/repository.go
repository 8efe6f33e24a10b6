package repository

import (
	"errors"

	"github.com/lib/pq"

	"busline/internal/database"
)

// SQLSTATE codes the booking core reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Repositories struct {
	Journeys *JourneyRepository
	Bookings *BookingRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Journeys: NewJourneyRepository(db),
		Bookings: NewBookingRepository(db),
	}
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation)
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}

// conn picks the caller's transaction when there is one.
func conn(db *database.DB, q database.Querier) database.Querier {
	if q != nil {
		return q
	}
	return db
}
