package hotel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/boutique-hotel-client/pkg/client"
	"github.com/Sternrassler/boutique-hotel-client/pkg/logging"
)

// BookingStore holds the bookings list and the state of the booking flow.
type BookingStore struct {
	api    API
	logger zerolog.Logger

	mu             sync.RWMutex
	currentBooking *Booking
	bookings       []Booking
	loading        bool
	err            string
	customerDraft  Customer
	step           BookingStep
}

// NewBookingStore returns a store at the start of the booking flow.
func NewBookingStore(api API) *BookingStore {
	return &BookingStore{
		api:      api,
		logger:   logging.NewLogger(logging.ComponentBookings),
		bookings: []Booking{},
		step:     StepForm,
	}
}

// FetchBookings loads GET /bookings. Anything but a JSON array is treated as
// no bookings.
func (s *BookingStore) FetchBookings(ctx context.Context) ([]Booking, error) {
	s.begin()
	defer s.end()

	var raw json.RawMessage
	if err := s.api.GetJSON(ctx, "/bookings", "", &raw); err != nil {
		s.fail(err)
		s.logger.Error().Err(err).Str("endpoint", "/bookings").Msg("Error fetching bookings")
		return nil, fmt.Errorf("fetch bookings: %w", err)
	}

	bookings := []Booking{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &bookings); err != nil {
			s.fail(err)
			return nil, fmt.Errorf("decode bookings: %w", err)
		}
	}

	s.mu.Lock()
	s.bookings = bookings
	s.mu.Unlock()

	return append([]Booking{}, bookings...), nil
}

// BookRoom books roomID for [from, to) for customer. The created booking
// becomes the current booking and is appended to the list.
func (s *BookingStore) BookRoom(ctx context.Context, roomID int, from, to string, customer Customer) (*Booking, error) {
	s.begin()
	defer s.end()

	if err := ValidateDates(from, to); err != nil {
		s.fail(err)
		return nil, err
	}

	path := rangePath(roomID, from, to)
	var booking Booking
	if err := s.api.PostJSON(ctx, path, "", customer, &booking); err != nil {
		s.fail(err)
		s.logger.Error().Err(err).Int("room_id", roomID).Msg("Booking failed")
		return nil, fmt.Errorf("book room %d: %w", roomID, err)
	}
	bookingsCreated.Inc()

	// A booking changes availability and the bookings list.
	for _, p := range []string{"/room/" + strconv.Itoa(roomID), "/bookings"} {
		if err := s.api.Invalidate(ctx, p); err != nil {
			s.logger.Warn().Err(err).Str("path", p).Msg("Failed to invalidate cache")
		}
	}

	s.mu.Lock()
	b := booking
	s.currentBooking = &b
	s.bookings = append(s.bookings, booking)
	s.mu.Unlock()

	s.logger.Info().Int("room_id", roomID).Str("from", from).Str("to", to).Msg("Room booked")
	return &booking, nil
}

// ClearCurrentBooking forgets the current booking and error.
func (s *BookingStore) ClearCurrentBooking() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentBooking = nil
	s.err = ""
}

// SetCustomerDraft stores the guest details being edited.
func (s *BookingStore) SetCustomerDraft(draft Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customerDraft = draft
}

// SetBookingStep moves the flow to step.
func (s *BookingStore) SetBookingStep(step BookingStep) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

// ResetBookingFlow returns to the form step with an empty draft.
func (s *BookingStore) ResetBookingFlow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = StepForm
	s.currentBooking = nil
	s.err = ""
	s.customerDraft = Customer{}
}

// CurrentBooking returns the last booking made, or nil.
func (s *BookingStore) CurrentBooking() *Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentBooking == nil {
		return nil
	}
	b := *s.currentBooking
	return &b
}

// Bookings returns a copy of the bookings list.
func (s *BookingStore) Bookings() []Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Booking{}, s.bookings...)
}

// CustomerDraft returns the guest details being edited.
func (s *BookingStore) CustomerDraft() Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customerDraft
}

// BookingStep returns the current flow step.
func (s *BookingStore) BookingStep() BookingStep {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Loading reports whether a request is in flight.
func (s *BookingStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last error message, or "".
func (s *BookingStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *BookingStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *BookingStore) end() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *BookingStore) fail(err error) {
	s.mu.Lock()
	s.err = client.Message(err)
	s.mu.Unlock()
}
