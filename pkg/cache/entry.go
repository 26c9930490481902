package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTTL applies when a response has no usable Expires header.
const DefaultTTL = 5 * time.Minute

// Entry is a cached API response.
type Entry struct {
	Body         []byte      `json:"body"`
	ETag         string      `json:"etag,omitempty"`
	LastModified time.Time   `json:"last_modified"`
	Expires      time.Time   `json:"expires"`
	StatusCode   int         `json:"status_code"`
	Header       http.Header `json:"header"`
	StoredAt     time.Time   `json:"stored_at"`
}

// Expired reports whether the entry is past its expiry.
func (e *Entry) Expired() bool {
	return !time.Now().Before(e.Expires)
}

// TTL returns the remaining lifetime, or 0 once expired.
func (e *Entry) TTL() time.Duration {
	if ttl := time.Until(e.Expires); ttl > 0 {
		return ttl
	}
	return 0
}

// CanRevalidate reports whether a conditional request can be built from e.
func (e *Entry) CanRevalidate() bool {
	return e != nil && (e.ETag != "" || !e.LastModified.IsZero())
}

// FromResponse builds an Entry from resp. The body is read fully and then
// replaced so the caller can still decode it.
func FromResponse(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &Entry{
		Body:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		StoredAt:   time.Now(),
		Expires:    expiresFrom(resp.Header),
	}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			entry.LastModified = t
		}
	}

	return entry, nil
}

// Response rebuilds an HTTP response from the entry for req.
func (e *Entry) Response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode)),
		StatusCode:    e.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Revalidate adds If-None-Match, or If-Modified-Since when there is no ETag.
func Revalidate(req *http.Request, e *Entry) {
	if req == nil || !e.CanRevalidate() {
		return
	}
	if e.ETag != "" {
		req.Header.Set("If-None-Match", e.ETag)
		return
	}
	req.Header.Set("If-Modified-Since", e.LastModified.UTC().Format(http.TimeFormat))
}

// expiresFrom honours Cache-Control max-age=0/no-store by expiring at once,
// otherwise uses Expires, falling back to DefaultTTL.
func expiresFrom(h http.Header) time.Time {
	now := time.Now()
	if cc := h.Get("Cache-Control"); cc != "" && noStore(cc) {
		return now
	}

	raw := h.Get("Expires")
	if raw == "" {
		return now.Add(DefaultTTL)
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return now.Add(DefaultTTL)
	}
	if t.Before(now) {
		return now
	}
	return t
}

func noStore(cacheControl string) bool {
	for _, d := range []string{"no-store", "no-cache", "max-age=0"} {
		if strings.Contains(strings.ToLower(cacheControl), d) {
			return true
		}
	}
	return false
}
