package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlotKey(t *testing.T) {
	k, err := ParseSlotKey("2024-05-02", "14:00")
	require.NoError(t, err)
	assert.Equal(t, SlotKey{Date: "2024-05-02", Time: "14:00"}, k)
	assert.Equal(t, "2024-05-02 14:00", k.String())

	k, err = ParseSlotKey(" 2024-05-02 ", "9:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", k.Time, "hour is zero padded")
}

func TestParseSlotKeyRejects(t *testing.T) {
	tests := []struct {
		name       string
		date, time string
		want       error
	}{
		{"slashes", "2024/05/02", "14:00", ErrBadDate},
		{"no zero pad month", "2024-5-02", "14:00", ErrBadDate},
		{"impossible day", "2024-02-30", "14:00", ErrBadDate},
		{"empty date", "", "14:00", ErrBadDate},
		{"hour out of range", "2024-05-02", "24:00", ErrBadTime},
		{"seconds", "2024-05-02", "14:00:00", ErrBadTime},
		{"twelve hour", "2024-05-02", "2:00PM", ErrBadTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSlotKey(tt.date, tt.time)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReservationSlot(t *testing.T) {
	r := Reservation{Date: "2024-05-01", Time: "10:00"}
	assert.Equal(t, SlotKey{Date: "2024-05-01", Time: "10:00"}, r.Slot())
}

func TestValidEmail(t *testing.T) {
	for s, want := range map[string]bool{
		"jan@example.com":       true,
		"jan.novak+cut@shop.sk": true,
		"":                      false,
		"jan":                   false,
		"jan@":                  false,
		"Jan <jan@example.com>": false,
		" jan@example.com":      false,
	} {
		assert.Equal(t, want, ValidEmail(s), s)
	}
}
