package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

// newTestClient returns a client against url with millisecond backoffs.
func newTestClient(t *testing.T, url string, rdb *redis.Client) *Client {
	t.Helper()

	cfg := DefaultConfig(url, rdb)
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig(DefaultBaseURL, nil),
		},
		{
			name:        "empty base url",
			config:      Config{UserAgent: "TestApp/1.0"},
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name:        "relative base url",
			config:      Config{BaseURL: "/api/v1", UserAgent: "TestApp/1.0"},
			expectError: true,
			errorMsg:    `base url must be an absolute http(s) url (got "/api/v1")`,
		},
		{
			name:        "unsupported scheme",
			config:      Config{BaseURL: "ftp://example.com", UserAgent: "TestApp/1.0"},
			expectError: true,
			errorMsg:    `base url must be an absolute http(s) url (got "ftp://example.com")`,
		},
		{
			name:        "empty user agent",
			config:      Config{BaseURL: DefaultBaseURL},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "negative retries",
			config:      Config{BaseURL: DefaultBaseURL, UserAgent: "TestApp/1.0", MaxRetries: -1},
			expectError: true,
			errorMsg:    "max_retries must be >= 0 (got -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("Expected client but got nil")
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{BaseURL: DefaultBaseURL + "/", UserAgent: "TestApp/1.0"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.MaxConcurrency() != 1 {
		t.Errorf("MaxConcurrency() = %d, want 1", c.MaxConcurrency())
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.cache != nil {
		t.Error("cache should be disabled without Redis")
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/api/v1", nil)
	if err := c.GetJSON(context.Background(), "/user/", "secret-token", nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}

	if gotPath != "/api/v1/user/" {
		t.Errorf("path = %q, want /api/v1/user/", gotPath)
	}
	if ua := got.Get("User-Agent"); ua != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", ua, DefaultUserAgent)
	}
	if accept := got.Get("Accept"); accept != "application/json" {
		t.Errorf("Accept = %q, want application/json", accept)
	}
	if auth := got.Get("Authorization"); auth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want Bearer secret-token", auth)
	}
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	var out []any
	if err := c.GetJSON(context.Background(), "/rooms", "", &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if auth != "" {
		t.Errorf("Authorization = %q, want empty", auth)
	}
}

func TestClient_PostJSON(t *testing.T) {
	var body map[string]string
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"token":"abc"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	var out struct {
		Token string `json:"token"`
	}
	in := map[string]string{"clientId": "alice", "secret": "pw"}
	if err := c.PostJSON(context.Background(), "/login", "", in, &out); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}

	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", contentType)
	}
	if body["clientId"] != "alice" || body["secret"] != "pw" {
		t.Errorf("body = %v", body)
	}
	if out.Token != "abc" {
		t.Errorf("Token = %q, want abc", out.Token)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"id":1}]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	var rooms []map[string]any
	if err := c.GetJSON(context.Background(), "/rooms", "", &rooms); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
	if len(rooms) != 1 {
		t.Errorf("len(rooms) = %d, want 1", len(rooms))
	}
}

func TestClient_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"upstream down"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	err := c.GetJSON(context.Background(), "/rooms", "", nil)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("error = %v, want ErrRetryExhausted", err)
	}
	if !IsStatus(err, http.StatusBadGateway) {
		t.Errorf("error = %v, want it to carry status 502", err)
	}
	if Message(err) != "upstream down" {
		t.Errorf("Message() = %q, want upstream down", Message(err))
	}
	if want := int32(DefaultConfig("", nil).MaxRetries + 1); calls.Load() != want {
		t.Errorf("calls = %d, want %d", calls.Load(), want)
	}
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid date range"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	err := c.GetJSON(context.Background(), "/room/1/from/2025-05-04/to/2025-05-01", "", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.Message != "Invalid date range" {
		t.Errorf("Message = %q, want Invalid date range", apiErr.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestClient_PostNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	err := c.PostJSON(context.Background(), "/room/1/from/2025-05-01/to/2025-05-04", "tok", map[string]string{"firstname": "A"}, nil)
	if !IsStatus(err, http.StatusInternalServerError) {
		t.Fatalf("error = %v, want status 500", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (POST must not be retried)", calls.Load())
	}
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	var out []any
	err := c.GetJSON(context.Background(), "/rooms", "", &out)
	if err == nil || !strings.Contains(err.Error(), "decode GET /rooms response") {
		t.Errorf("error = %v, want decode error", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := DefaultConfig(server.URL, nil)
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = c.GetJSON(ctx, "/rooms", "", nil)
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
}

func TestClient_CachesGET(t *testing.T) {
	rdb := setupTestRedis(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, rdb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		var rooms []map[string]any
		if err := c.GetJSON(ctx, "/rooms", "", &rooms); err != nil {
			t.Fatalf("GetJSON() #%d error = %v", i, err)
		}
		if len(rooms) != 2 {
			t.Fatalf("GetJSON() #%d len = %d, want 2", i, len(rooms))
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	if err := c.Invalidate(ctx, "/rooms"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if err := c.GetJSON(ctx, "/rooms", "", nil); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls after invalidate = %d, want 2", calls.Load())
	}
}

func TestClient_CacheScopedByToken(t *testing.T) {
	rdb := setupTestRedis(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"username":"` + strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") + `"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, rdb)
	ctx := context.Background()

	for _, token := range []string{"alice", "bob", "alice"} {
		var user struct {
			Username string `json:"username"`
		}
		if err := c.GetJSON(ctx, "/user/", token, &user); err != nil {
			t.Fatalf("GetJSON(%s) error = %v", token, err)
		}
		if user.Username != token {
			t.Errorf("user for %s = %q", token, user.Username)
		}
	}
}

func TestClient_ConditionalRevalidation(t *testing.T) {
	rdb := setupTestRedis(t)

	var calls, conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Cache-Control", "no-cache")
		w.Write([]byte(`[{"id":7}]`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, rdb)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		var rooms []map[string]any
		if err := c.GetJSON(ctx, "/bookings", "", &rooms); err != nil {
			t.Fatalf("GetJSON() #%d error = %v", i, err)
		}
		if len(rooms) != 1 {
			t.Fatalf("GetJSON() #%d len = %d, want 1", i, len(rooms))
		}
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if conditional.Load() != 1 {
		t.Errorf("conditional requests = %d, want 1", conditional.Load())
	}
}

func TestClient_NotModifiedWithoutCacheRefetches(t *testing.T) {
	var calls, conditional atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("If-None-Match") != "" {
			conditional.Add(1)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Write([]byte(`{"id":7}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	req, err := c.NewRequest(context.Background(), http.MethodGet, "/rooms/7", "", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("If-None-Match", `"stale"`)

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"id":7}` {
		t.Errorf("body = %q", body)
	}
	if calls.Load() != 2 || conditional.Load() != 1 {
		t.Errorf("calls = %d, conditional = %d; want 2, 1", calls.Load(), conditional.Load())
	}
}

func TestClient_NotModifiedRefetchIsAttemptedOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	req, err := c.NewRequest(context.Background(), http.MethodGet, "/rooms", "", nil)
	if err != nil {
		t.Fatalf("NewRequest() error = %v", err)
	}
	req.Header.Set("If-Modified-Since", time.Now().UTC().Format(http.TimeFormat))

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("StatusCode = %d, want 304", resp.StatusCode)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)
	resp, err := c.Get(context.Background(), "/health")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/rooms", "/rooms"},
		{"/user/", "/user"},
		{"/room/12/from/2025-05-01/to/2025-05-04", "/room/{id}/from/{date}/to/{date}"},
		{"/", "/"},
		{"/bookings", "/bookings"},
	}
	for _, tt := range tests {
		if got := route(tt.path); got != tt.want {
			t.Errorf("route(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
