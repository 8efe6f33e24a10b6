package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultSeatsPerRow matches the four-abreast coach layout.
const DefaultSeatsPerRow = 4

// ErrInvalidSeat is returned for seat references that do not name a slot.
var ErrInvalidSeat = errors.New("invalid seat")

// SeatID addresses one seat slot. Row and Column are 1-based.
type SeatID struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// Label renders the seat as row letters followed by the column, e.g. "B3".
func (s SeatID) Label() string {
	return RowLetters(s.Row) + strconv.Itoa(s.Column)
}

func (s SeatID) String() string { return s.Label() }

// RowLetters converts a 1-based row to A..Z, AA, AB, ...
func RowLetters(row int) string {
	if row <= 0 {
		return ""
	}
	var buf []byte
	for row > 0 {
		row--
		buf = append(buf, byte('A'+row%26))
		row /= 26
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ParseLabel parses a label such as "b3" or "AA12".
func ParseLabel(label string) (SeatID, error) {
	s := strings.ToUpper(strings.TrimSpace(label))
	i := 0
	row := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		row = row*26 + int(s[i]-'A'+1)
		i++
		if row > 1<<20 {
			return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, label)
		}
	}
	if i == 0 || i == len(s) {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, label)
	}
	col, err := strconv.Atoi(s[i:])
	if err != nil || col <= 0 || s[i] == '+' {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, label)
	}
	return SeatID{Row: row, Column: col}, nil
}

// Layout describes how a journey's seats are arranged in rows.
type Layout struct {
	TotalSeats  int
	SeatsPerRow int
}

// NewLayout builds a layout, falling back to DefaultSeatsPerRow when perRow is unset.
func NewLayout(totalSeats, perRow int) Layout {
	if perRow <= 0 {
		perRow = DefaultSeatsPerRow
	}
	return Layout{TotalSeats: totalSeats, SeatsPerRow: perRow}
}

// Rows is the number of rows; the last one may be partial.
func (l Layout) Rows() int {
	if l.TotalSeats <= 0 {
		return 0
	}
	return (l.TotalSeats + l.SeatsPerRow - 1) / l.SeatsPerRow
}

// Ordinal returns the 1-based row-major seat number of id.
func (l Layout) Ordinal(id SeatID) (int, error) {
	if id.Row < 1 || id.Column < 1 || id.Column > l.SeatsPerRow {
		return 0, fmt.Errorf("%w: %s is outside the seat map", ErrInvalidSeat, id.Label())
	}
	n := (id.Row-1)*l.SeatsPerRow + id.Column
	if n > l.TotalSeats {
		return 0, fmt.Errorf("%w: %s is outside the seat map", ErrInvalidSeat, id.Label())
	}
	return n, nil
}

// SeatAt is the inverse of Ordinal.
func (l Layout) SeatAt(ordinal int) (SeatID, error) {
	if ordinal < 1 || ordinal > l.TotalSeats {
		return SeatID{}, fmt.Errorf("%w: seat %d is out of range 1..%d", ErrInvalidSeat, ordinal, l.TotalSeats)
	}
	return SeatID{
		Row:    (ordinal-1)/l.SeatsPerRow + 1,
		Column: (ordinal-1)%l.SeatsPerRow + 1,
	}, nil
}

// SeatRef is an inbound seat reference: either an ordinal (7, "7") or a label ("B3").
type SeatRef struct {
	raw string
}

func SeatNumber(n int) SeatRef       { return SeatRef{raw: strconv.Itoa(n)} }
func SeatLabel(label string) SeatRef { return SeatRef{raw: label} }

func (r SeatRef) String() string { return r.raw }

// UnmarshalJSON принимает число, строку с числом или метку места
func (r *SeatRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		r.raw = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.raw = s
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("seat number must be a number or a label: %s", data)
		}
		r.raw = n.String()
	}
	return nil
}

func (r SeatRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.raw)
}

// Resolve maps the reference onto layout and returns the seat and its ordinal.
func (r SeatRef) Resolve(l Layout) (SeatID, int, error) {
	s := strings.TrimSpace(r.raw)
	if s == "" {
		return SeatID{}, 0, fmt.Errorf("%w: seat number is required", ErrInvalidSeat)
	}

	if s[0] >= '0' && s[0] <= '9' || s[0] == '-' {
		n, err := strconv.Atoi(s)
		if err != nil {
			return SeatID{}, 0, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
		}
		id, err := l.SeatAt(n)
		if err != nil {
			return SeatID{}, 0, err
		}
		return id, n, nil
	}

	id, err := ParseLabel(s)
	if err != nil {
		return SeatID{}, 0, err
	}
	n, err := l.Ordinal(id)
	if err != nil {
		return SeatID{}, 0, err
	}
	return id, n, nil
}

// SeatView is one entry of a seat map
type SeatView struct {
	SeatNumber string `json:"seatNumber"`
	Number     int    `json:"number"`
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	IsBooked   bool   `json:"isBooked"`
}

// SeatMap is the seat map of one journey. Found is false when the journey does
// not exist, which keeps it apart from a journey that has no seats.
type SeatMap struct {
	JourneyID   string     `json:"journeyId"`
	Found       bool       `json:"found"`
	TotalRows   int        `json:"totalRows"`
	SeatsPerRow int        `json:"seatsPerRow"`
	Seats       []SeatView `json:"seats"`
}
