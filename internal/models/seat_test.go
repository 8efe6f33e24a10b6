package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLetters(t *testing.T) {
	tests := map[int]string{
		0:   "",
		1:   "A",
		2:   "B",
		26:  "Z",
		27:  "AA",
		28:  "AB",
		52:  "AZ",
		53:  "BA",
		702: "ZZ",
		703: "AAA",
	}
	for row, want := range tests {
		assert.Equal(t, want, RowLetters(row), "row %d", row)
	}
}

func TestParseLabelRoundTripsWithRowLetters(t *testing.T) {
	for row := 1; row <= 800; row++ {
		id := SeatID{Row: row, Column: 3}
		parsed, err := ParseLabel(id.Label())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}
}

func TestParseLabel(t *testing.T) {
	id, err := ParseLabel(" b3 ")
	require.NoError(t, err)
	assert.Equal(t, SeatID{Row: 2, Column: 3}, id)

	for _, bad := range []string{"", "B", "3", "B0", "B-1", "B+1", "#1", "B3x", "1B"} {
		_, err := ParseLabel(bad)
		assert.ErrorIs(t, err, ErrInvalidSeat, "label %q", bad)
	}
}

func TestLayoutRowsAndOrdinals(t *testing.T) {
	l := NewLayout(10, 4)
	assert.Equal(t, 3, l.Rows())

	id, err := l.SeatAt(7)
	require.NoError(t, err)
	assert.Equal(t, SeatID{Row: 2, Column: 3}, id)
	assert.Equal(t, "B3", id.Label())

	n, err := l.Ordinal(SeatID{Row: 3, Column: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	// C3 would be seat 11 on a 10 seat bus
	_, err = l.Ordinal(SeatID{Row: 3, Column: 3})
	assert.ErrorIs(t, err, ErrInvalidSeat)

	_, err = l.Ordinal(SeatID{Row: 1, Column: 5})
	assert.ErrorIs(t, err, ErrInvalidSeat)

	_, err = l.SeatAt(0)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	_, err = l.SeatAt(11)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestNewLayoutDefaultsSeatsPerRow(t *testing.T) {
	l := NewLayout(40, 0)
	assert.Equal(t, DefaultSeatsPerRow, l.SeatsPerRow)
	assert.Equal(t, 10, l.Rows())
	assert.Equal(t, 0, NewLayout(0, 4).Rows())
}

func TestSeatRefResolve(t *testing.T) {
	l := NewLayout(4, 4)

	tests := []struct {
		name    string
		payload string
		ordinal int
		label   string
		wantErr bool
	}{
		{"integer", `2`, 2, "A2", false},
		{"numeric string", `"2"`, 2, "A2", false},
		{"label", `"A2"`, 2, "A2", false},
		{"lowercase label", `"a4"`, 4, "A4", false},
		{"out of range number", `99`, 0, "", true},
		{"out of range label", `"B1"`, 0, "", true},
		{"zero", `0`, 0, "", true},
		{"negative", `-1`, 0, "", true},
		{"fraction", `1.5`, 0, "", true},
		{"null", `null`, 0, "", true},
		{"garbage", `"seat two"`, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref SeatRef
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &ref))

			id, n, err := ref.Resolve(l)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ordinal, n)
			assert.Equal(t, tt.label, id.Label())
		})
	}
}

func TestSeatRefRejectsNonScalarJSON(t *testing.T) {
	var ref SeatRef
	assert.Error(t, json.Unmarshal([]byte(`{"row":1}`), &ref))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ref))
}

func TestBookSeatRequestDecoding(t *testing.T) {
	var req BookSeatRequest
	body := `{"journeyId":"6f1c1f0e-5d43-4b8e-9b0a-2f4f7a1d9c10","seatNumber":"C2","userEmail":"a@x.com"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	_, n, err := req.SeatNumber.Resolve(NewLayout(12, 4))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestDateParsing(t *testing.T) {
	want := NewDate(2024, time.January, 1)

	for _, s := range []string{"2024-01-01", "2024-01-01T00:00:00Z", "2024-01-01T18:30:00+05:00", "2024-01-01T00:00:00"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(d.Time), s)
	}

	_, err := ParseDate("01/01/2024")
	assert.Error(t, err)

	out, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-01"`, string(out))
}

func TestCreateJourneyRequestValidate(t *testing.T) {
	valid := CreateJourneyRequest{
		BusNumber:   "KA-01",
		From:        "CityA",
		To:          "CityB",
		JourneyDate: NewDate(2024, time.January, 1),
		StartTime:   "08:00:00",
		Fare:        "100.00",
		TotalSeats:  40,
	}
	require.NoError(t, valid.Validate())

	j := valid.Journey()
	assert.Equal(t, "CityA", j.From)
	assert.Equal(t, 40, j.TotalSeats)

	noSeats := valid
	noSeats.TotalSeats = 0
	assert.Error(t, noSeats.Validate())

	noDate := valid
	noDate.JourneyDate = Date{}
	assert.Error(t, noDate.Validate())

	blankBus := valid
	blankBus.BusNumber = "  "
	assert.Error(t, blankBus.Validate())
}
