package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestEntry_ExpiredAndTTL(t *testing.T) {
	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantTTLMin  time.Duration
		wantTTLMax  time.Duration
	}{
		{"one hour left", time.Now().Add(time.Hour), false, 59 * time.Minute, 61 * time.Minute},
		{"expired", time.Now().Add(-time.Hour), true, 0, 0},
		{"just expired", time.Now().Add(-time.Second), true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Expires: tt.expires}
			if got := e.Expired(); got != tt.wantExpired {
				t.Errorf("Expired() = %v, want %v", got, tt.wantExpired)
			}
			if ttl := e.TTL(); ttl < tt.wantTTLMin || ttl > tt.wantTTLMax {
				t.Errorf("TTL() = %v, want between %v and %v", ttl, tt.wantTTLMin, tt.wantTTLMax)
			}
		})
	}
}

func TestFromResponse(t *testing.T) {
	lastMod := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Etag":          []string{`"rooms-v7"`},
			"Expires":       []string{time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)},
			"Last-Modified": []string{lastMod.Format(http.TimeFormat)},
		},
		Body: io.NopCloser(bytes.NewReader([]byte(`[{"id":1}]`))),
	}

	entry, err := FromResponse(resp)
	if err != nil {
		t.Fatalf("FromResponse() error = %v", err)
	}

	if string(entry.Body) != `[{"id":1}]` {
		t.Errorf("Body = %s", entry.Body)
	}
	if entry.ETag != `"rooms-v7"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if entry.TTL() < 59*time.Minute {
		t.Errorf("TTL() = %v, want about an hour", entry.TTL())
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `[{"id":1}]` {
		t.Errorf("response body not restored, got %q", body)
	}
}

func TestFromResponse_Nil(t *testing.T) {
	if _, err := FromResponse(nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestExpiresFrom(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		header  http.Header
		wantMin time.Time
		wantMax time.Time
	}{
		{
			name:    "no header uses default",
			header:  http.Header{},
			wantMin: now.Add(DefaultTTL - time.Second),
			wantMax: now.Add(DefaultTTL + time.Second),
		},
		{
			name:    "unparsable uses default",
			header:  http.Header{"Expires": []string{"soon"}},
			wantMin: now.Add(DefaultTTL - time.Second),
			wantMax: now.Add(DefaultTTL + time.Second),
		},
		{
			name:    "past expires is now",
			header:  http.Header{"Expires": []string{now.Add(-time.Hour).UTC().Format(http.TimeFormat)}},
			wantMin: now.Add(-time.Second),
			wantMax: now.Add(time.Second),
		},
		{
			name:    "no-store expires now",
			header:  http.Header{"Cache-Control": []string{"No-Store"}},
			wantMin: now.Add(-time.Second),
			wantMax: now.Add(time.Second),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expiresFrom(tt.header)
			if got.Before(tt.wantMin) || got.After(tt.wantMax) {
				t.Errorf("expiresFrom() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestRevalidate(t *testing.T) {
	lastMod := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		entry      *Entry
		wantHeader string
		wantValue  string
	}{
		{"etag", &Entry{ETag: `"v1"`}, "If-None-Match", `"v1"`},
		{"last modified", &Entry{LastModified: lastMod}, "If-Modified-Since", "Wed, 01 Jan 2025 12:00:00 GMT"},
		{"etag preferred", &Entry{ETag: `"v1"`, LastModified: lastMod}, "If-None-Match", `"v1"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "https://hotel.example/rooms", nil)
			Revalidate(req, tt.entry)
			if got := req.Header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("%s = %q, want %q", tt.wantHeader, got, tt.wantValue)
			}
		})
	}
}

func TestRevalidate_NoValidators(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://hotel.example/rooms", nil)
	Revalidate(req, &Entry{Body: []byte("x")})
	Revalidate(req, nil)
	Revalidate(nil, &Entry{ETag: "x"})

	if req.Header.Get("If-None-Match") != "" || req.Header.Get("If-Modified-Since") != "" {
		t.Errorf("unexpected validators: %v", req.Header)
	}
}

func TestEntry_Response(t *testing.T) {
	e := &Entry{
		Body:       []byte(`{"available":true}`),
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}

	resp := e.Response(nil)
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK || resp.Status != "200 OK" {
		t.Errorf("status = %d %q", resp.StatusCode, resp.Status)
	}
	if string(body) != `{"available":true}` {
		t.Errorf("body = %q", body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("header not copied: %v", resp.Header)
	}
}
