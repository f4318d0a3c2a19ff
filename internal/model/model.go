package model

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// MaxReservationsPerSlot is how many reservations may share one (date, time).
const MaxReservationsPerSlot = 5

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrBadDate = errors.New("date must be in YYYY-MM-DD format")
	ErrBadTime = errors.New("time must be in HH:MM format")
)

type Reservation struct {
	ID        int64
	Name      string
	Email     string
	Date      string
	Time      string
	IPAddress string
	ClientID  string
	CreatedAt time.Time
}

// Slot returns the grouping key the reservation counts against.
func (r Reservation) Slot() SlotKey {
	return SlotKey{Date: r.Date, Time: r.Time}
}

type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// SlotKey identifies one bookable unit. Date and Time are always held in
// canonical form (DateLayout / TimeLayout) so they compare as strings.
type SlotKey struct {
	Date string
	Time string
}

func (k SlotKey) String() string { return k.Date + " " + k.Time }

// ParseSlotKey validates and canonicalises a raw date and time.
// "9:05" is accepted and stored as "09:05".
func ParseSlotKey(date, clock string) (SlotKey, error) {
	d, err := ParseDate(date)
	if err != nil {
		return SlotKey{}, err
	}
	t, err := ParseTime(clock)
	if err != nil {
		return SlotKey{}, err
	}
	return SlotKey{Date: d, Time: t}, nil
}

func ParseDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrBadDate
	}
	return d.Format(DateLayout), nil
}

func ParseTime(s string) (string, error) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrBadTime
	}
	return t.Format(TimeLayout), nil
}

// ValidEmail reports whether s is a bare email address (no display name).
func ValidEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	_, domain, ok := strings.Cut(addr.Address, "@")
	return ok && domain != ""
}
