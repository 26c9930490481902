package hotel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the API's date format in availability and booking paths.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidDates is returned when a date range is malformed or empty.
	ErrInvalidDates = errors.New("invalid date range")

	// ErrNotAuthenticated is returned when an operation needs a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Room is a bookable room.
type Room struct {
	ID            int     `json:"id" yaml:"id"`
	RoomsName     string  `json:"roomsName" yaml:"name"`
	Beds          int     `json:"beds" yaml:"beds"`
	PricePerNight float64 `json:"pricePerNight" yaml:"price_per_night"`
	Extras        any     `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Availability is the answer to an availability check.
type Availability struct {
	Available bool `json:"available"`
}

// Customer holds the guest details sent with a booking.
type Customer struct {
	Firstname string `json:"firstname" yaml:"firstname"`
	Lastname  string `json:"lastname" yaml:"lastname"`
	Email     string `json:"email" yaml:"email"`
	Birthdate string `json:"birthdate" yaml:"birthdate"`
}

// Booking is a confirmed reservation.
type Booking struct {
	ID       int    `json:"id,omitempty" yaml:"id,omitempty"`
	RoomID   int    `json:"roomId,omitempty" yaml:"room_id,omitempty"`
	From     string `json:"from,omitempty" yaml:"from,omitempty"`
	To       string `json:"to,omitempty" yaml:"to,omitempty"`
	Customer `yaml:",inline"`
}

// User is a registered account.
type User struct {
	ID        int    `json:"id,omitempty" yaml:"id,omitempty"`
	Username  string `json:"username" yaml:"username"`
	Firstname string `json:"firstname" yaml:"firstname"`
	Lastname  string `json:"lastname" yaml:"lastname"`
	Email     string `json:"email" yaml:"email"`
}

// Credentials are sent to POST /login.
type Credentials struct {
	ClientID string `json:"clientId"`
	Secret   string `json:"secret"`
}

// Registration is sent to POST /register.
type Registration struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// BookingStep is a stage of the booking flow.
type BookingStep string

const (
	StepForm         BookingStep = "form"
	StepCheck        BookingStep = "check"
	StepConfirmation BookingStep = "confirmation"
)

// ParseBookingStep accepts the three flow steps case-insensitively.
func ParseBookingStep(s string) (BookingStep, error) {
	switch step := BookingStep(strings.ToLower(strings.TrimSpace(s))); step {
	case StepForm, StepCheck, StepConfirmation:
		return step, nil
	default:
		return "", fmt.Errorf("unknown booking step %q", s)
	}
}

// ValidateDates checks that from and to are YYYY-MM-DD dates with from
// strictly before to.
func ValidateDates(from, to string) error {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return fmt.Errorf("%w: from %q is not YYYY-MM-DD", ErrInvalidDates, from)
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return fmt.Errorf("%w: to %q is not YYYY-MM-DD", ErrInvalidDates, to)
	}
	if !f.Before(t) {
		return fmt.Errorf("%w: from %s must be before to %s", ErrInvalidDates, from, to)
	}
	return nil
}

func rangePath(roomID int, from, to string) string {
	return fmt.Sprintf("/room/%d/from/%s/to/%s", roomID, from, to)
}

// decodeToken accepts the two login answers the API gives: a bare JSON
// string or an object with a token field.
func decodeToken(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Token string `json:"token"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Token
	}
	return ""
}
