package hotel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/boutique-hotel-client/pkg/client"
	"github.com/Sternrassler/boutique-hotel-client/pkg/logging"
)

// RoomStore holds the room catalogue, the rooms available for a date range
// and the user's current selection.
type RoomStore struct {
	api    API
	logger zerolog.Logger

	mu                  sync.RWMutex
	rooms               []Room
	availableRooms      []Room
	loadingAvailability bool
	selectedRoom        *Room
	selectedFrom        string
	selectedTo          string
	err                 string
}

// NewRoomStore returns an empty store backed by api.
func NewRoomStore(api API) *RoomStore {
	return &RoomStore{
		api:    api,
		logger: logging.NewLogger(logging.ComponentRooms),
	}
}

// FetchRooms loads the catalogue from GET /rooms. On failure the previous
// catalogue is kept.
func (s *RoomStore) FetchRooms(ctx context.Context) error {
	var rooms []Room
	if err := s.api.GetJSON(ctx, "/rooms", "", &rooms); err != nil {
		s.logger.Error().Err(err).Str("endpoint", "/rooms").Msg("Error fetching rooms")
		s.setErr(err)
		return fmt.Errorf("fetch rooms: %w", err)
	}
	if rooms == nil {
		rooms = []Room{}
	}

	s.mu.Lock()
	s.rooms = rooms
	s.err = ""
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(rooms)).Msg("Rooms loaded")
	return nil
}

// FetchAvailableRooms checks every known room for [from, to) concurrently,
// bounded by the API's MaxConcurrency. Available rooms keep the catalogue
// order. If any check fails the available list is emptied and the first
// error is returned.
func (s *RoomStore) FetchAvailableRooms(ctx context.Context, from, to string) ([]Room, error) {
	if err := ValidateDates(from, to); err != nil {
		s.setErr(err)
		return nil, err
	}

	s.mu.Lock()
	rooms := append([]Room(nil), s.rooms...)
	s.loadingAvailability = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loadingAvailability = false
		s.mu.Unlock()
	}()

	start := time.Now()
	available := make([]bool, len(rooms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.api.MaxConcurrency()))
	for i, room := range rooms {
		g.Go(func() error {
			var a Availability
			if err := s.api.GetJSON(gctx, rangePath(room.ID, from, to), "", &a); err != nil {
				availabilityChecks.WithLabelValues("error").Inc()
				return fmt.Errorf("check room %d: %w", room.ID, err)
			}
			if a.Available {
				availabilityChecks.WithLabelValues("available").Inc()
			} else {
				availabilityChecks.WithLabelValues("unavailable").Inc()
			}
			available[i] = a.Available
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("from", from).Str("to", to).Msg("Error fetching available rooms")
		s.mu.Lock()
		s.availableRooms = []Room{}
		s.err = client.Message(err)
		s.mu.Unlock()
		return []Room{}, fmt.Errorf("fetch available rooms: %w", err)
	}

	result := make([]Room, 0, len(rooms))
	for i, room := range rooms {
		if available[i] {
			result = append(result, room)
		}
	}

	s.mu.Lock()
	s.availableRooms = result
	s.err = ""
	s.mu.Unlock()

	s.logger.Debug().
		Str("from", from).
		Str("to", to).
		Int("checked", len(rooms)).
		Int("available", len(result)).
		Dur("duration", time.Since(start)).
		Msg("Availability checked")

	return append([]Room{}, result...), nil
}

// Rooms returns a copy of the catalogue.
func (s *RoomStore) Rooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Room{}, s.rooms...)
}

// AvailableRooms returns a copy of the last availability result.
func (s *RoomStore) AvailableRooms() []Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Room{}, s.availableRooms...)
}

// Room looks a room up by ID in the catalogue.
func (s *RoomStore) Room(id int) (Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// LoadingAvailability reports whether an availability check is running.
func (s *RoomStore) LoadingAvailability() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadingAvailability
}

// SetSelectedRoom selects room; nil clears the selection.
func (s *RoomStore) SetSelectedRoom(room *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room == nil {
		s.selectedRoom = nil
		return
	}
	r := *room
	s.selectedRoom = &r
}

// SelectedRoom returns the selected room, or nil.
func (s *RoomStore) SelectedRoom() *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedRoom == nil {
		return nil
	}
	r := *s.selectedRoom
	return &r
}

// SetSelectedDates records the chosen stay.
func (s *RoomStore) SetSelectedDates(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFrom, s.selectedTo = from, to
}

// SelectedDates returns the chosen stay.
func (s *RoomStore) SelectedDates() (from, to string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFrom, s.selectedTo
}

// Err returns the last error message, or "".
func (s *RoomStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *RoomStore) setErr(err error) {
	s.mu.Lock()
	s.err = client.Message(err)
	s.mu.Unlock()
}
