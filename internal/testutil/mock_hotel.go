// Package testutil provides a mock boutique hotel API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Room mirrors the API's room representation.
type Room struct {
	ID            int     `json:"id"`
	RoomsName     string  `json:"roomsName"`
	Beds          int     `json:"beds"`
	PricePerNight float64 `json:"pricePerNight"`
}

// Booking mirrors the API's booking representation.
type Booking struct {
	ID        int    `json:"id"`
	RoomID    int    `json:"roomId"`
	From      string `json:"from"`
	To        string `json:"to"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}

// User mirrors the API's user representation.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
}

type account struct {
	user     User
	password string
	token    string
}

// MockHotel is an in-memory hotel API served by httptest.
type MockHotel struct {
	server *httptest.Server
	mu     sync.RWMutex

	handlers  map[string]http.HandlerFunc
	rooms     []Room
	available map[int]bool
	bookings  []Booking
	accounts  map[string]*account

	// LoginAsString makes POST /login answer with a bare JSON string
	// instead of {"token": ...}.
	LoginAsString bool

	// Tracking
	RequestCount      int
	PathCounts        map[string]int
	LastRequestHeader http.Header
}

// NewMockHotel starts a mock API with no rooms, bookings or accounts.
func NewMockHotel() *MockHotel {
	m := &MockHotel{
		handlers:   make(map[string]http.HandlerFunc),
		available:  make(map[int]bool),
		accounts:   make(map[string]*account),
		PathCounts: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms", m.handleRooms)
	mux.HandleFunc("GET /room/{id}/from/{from}/to/{to}", m.handleAvailability)
	mux.HandleFunc("POST /room/{id}/from/{from}/to/{to}", m.handleBook)
	mux.HandleFunc("GET /bookings", m.handleBookings)
	mux.HandleFunc("POST /login", m.handleLogin)
	mux.HandleFunc("POST /register", m.handleRegister)
	mux.HandleFunc("GET /user/", m.handleUser)

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.PathCounts[r.Method+" "+r.URL.Path]++
		m.LastRequestHeader = r.Header.Clone()
		handler, exists := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockHotel) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHotel) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockHotel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PathCounts = make(map[string]int)
	m.LastRequestHeader = nil
}

// SetHandler overrides the handler for an exact path.
func (m *MockHotel) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for an exact path.
func (m *MockHotel) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// AddRoom registers a room and whether it is available for any range.
func (m *MockHotel) AddRoom(room Room, available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = append(m.rooms, room)
	m.available[room.ID] = available
}

// AddRooms registers n rooms with IDs 1..n; odd IDs are available.
func (m *MockHotel) AddRooms(n int) {
	for i := 1; i <= n; i++ {
		m.AddRoom(Room{
			ID:            i,
			RoomsName:     fmt.Sprintf("Room %d", i),
			Beds:          1 + i%3,
			PricePerNight: float64(80 + 10*i),
		}, i%2 == 1)
	}
}

// AddAccount registers a user that can log in with username and password
// and is identified by token afterwards.
func (m *MockHotel) AddAccount(user User, password, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[user.Username] = &account{user: user, password: password, token: token}
}

// Bookings returns the bookings made so far.
func (m *MockHotel) Bookings() []Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Booking(nil), m.bookings...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockHotel) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns how often "METHOD /path" was requested.
func (m *MockHotel) GetPathCount(methodPath string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[methodPath]
}

func (m *MockHotel) handleRooms(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	rooms := append([]Room{}, m.rooms...)
	m.mu.RUnlock()
	writeJSON(w, http.StatusOK, rooms)
}

func (m *MockHotel) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := m.roomID(w, r)
	if !ok {
		return
	}
	m.mu.RLock()
	available := m.available[id]
	m.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (m *MockHotel) handleBook(w http.ResponseWriter, r *http.Request) {
	id, ok := m.roomID(w, r)
	if !ok {
		return
	}

	var b Booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid booking payload")
		return
	}
	if b.Firstname == "" || b.Lastname == "" || b.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Missing customer details")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.available[id] {
		writeMessage(w, http.StatusConflict, "Room is not available")
		return
	}
	b.ID = len(m.bookings) + 1
	b.RoomID = id
	b.From = r.PathValue("from")
	b.To = r.PathValue("to")
	m.bookings = append(m.bookings, b)
	writeJSON(w, http.StatusCreated, b)
}

func (m *MockHotel) handleBookings(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	bookings := append([]Booking{}, m.bookings...)
	m.mu.RUnlock()
	writeJSON(w, http.StatusOK, bookings)
}

func (m *MockHotel) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		ClientID string `json:"clientId"`
		Secret   string `json:"secret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid login payload")
		return
	}

	m.mu.RLock()
	acc, ok := m.accounts[creds.ClientID]
	asString := m.LoginAsString
	m.mu.RUnlock()
	if !ok || acc.password != creds.Secret {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if asString {
		writeJSON(w, http.StatusOK, acc.token)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": acc.token})
}

func (m *MockHotel) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg struct {
		User
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid registration payload")
		return
	}
	if reg.Username == "" || reg.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[reg.Username]; exists {
		writeMessage(w, http.StatusConflict, "Username already taken")
		return
	}
	reg.User.ID = len(m.accounts) + 1
	m.accounts[reg.Username] = &account{
		user:     reg.User,
		password: reg.Password,
		token:    "token-" + reg.Username,
	}
	writeJSON(w, http.StatusCreated, reg.User)
}

func (m *MockHotel) handleUser(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if token != "" && acc.token == token {
			writeJSON(w, http.StatusOK, acc.user)
			return
		}
	}
	writeMessage(w, http.StatusUnauthorized, "Unauthorized")
}

func (m *MockHotel) roomID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid room id")
		return 0, false
	}
	m.mu.RLock()
	_, known := m.available[id]
	m.mu.RUnlock()
	if !known {
		writeMessage(w, http.StatusNotFound, "Room not found")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse(retryAfter int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Rate limit exceeded"}`,
		Headers: map[string]string{
			"Retry-After":  strconv.Itoa(retryAfter),
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
