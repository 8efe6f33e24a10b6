package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date - дата без времени суток
type Date struct {
	time.Time
}

// NewDate returns the calendar date at UTC midnight.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day of t, keeping its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts "2024-01-01", RFC 3339 and the zone-less "2024-01-01T00:00:00".
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// Scan reads a DATE column.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

// Value writes the date as "YYYY-MM-DD" so the server never shifts it by zone.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// SearchJourneysRequest - модель поиска рейсов
type SearchJourneysRequest struct {
	From        string `json:"from" binding:"required"`
	To          string `json:"to" binding:"required"`
	JourneyDate Date   `json:"journeyDate"`
}

// BookSeatRequest - модель для бронирования места
type BookSeatRequest struct {
	JourneyID  string  `json:"journeyId" binding:"required"`
	SeatNumber SeatRef `json:"seatNumber"`
	UserEmail  string  `json:"userEmail"`
}

// CreateJourneyRequest is used by provisioning to add a journey.
type CreateJourneyRequest struct {
	BusNumber   string
	From        string
	To          string
	JourneyDate Date
	StartTime   string
	Fare        string
	TotalSeats  int
	SeatsPerRow int
}

// Validate checks the fields a journey row cannot be stored without.
func (r CreateJourneyRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.BusNumber) == "":
		return fmt.Errorf("bus number is required")
	case strings.TrimSpace(r.From) == "" || strings.TrimSpace(r.To) == "":
		return fmt.Errorf("route endpoints are required")
	case r.JourneyDate.IsZero():
		return fmt.Errorf("journey date is required")
	case r.TotalSeats <= 0:
		return fmt.Errorf("total seats must be positive, got %d", r.TotalSeats)
	case r.SeatsPerRow < 0:
		return fmt.Errorf("seats per row must not be negative, got %d", r.SeatsPerRow)
	}
	return nil
}

// Journey builds the row to insert; ID and CreatedAt are left for the store.
func (r CreateJourneyRequest) Journey() *Journey {
	return &Journey{
		BusNumber:   strings.TrimSpace(r.BusNumber),
		From:        strings.TrimSpace(r.From),
		To:          strings.TrimSpace(r.To),
		JourneyDate: r.JourneyDate,
		StartTime:   r.StartTime,
		Fare:        r.Fare,
		TotalSeats:  r.TotalSeats,
		SeatsPerRow: r.SeatsPerRow,
	}
}
