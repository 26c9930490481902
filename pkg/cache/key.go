package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "hotel:cache"

// Key identifies a cached response.
type Key struct {
	// Path is the API path relative to the base URL, e.g. "/room/3/from/2025-01-02/to/2025-01-05".
	Path string

	// Query holds the request's query parameters.
	Query url.Values

	// Scope separates user-specific responses, typically the token subject.
	// Empty for public endpoints.
	Scope string
}

// String renders the key deterministically:
//
//	hotel:cache:<path>[:k=v...][:scope=<scope>]
//
// Query keys are sorted and multi-valued parameters keep their order.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(KeyPrefix)
	b.WriteByte(':')
	b.WriteString(strings.Trim(k.Path, "/"))

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range k.Query[name] {
			b.WriteByte(':')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(v)
		}
	}

	if k.Scope != "" {
		b.WriteString(":scope=")
		b.WriteString(k.Scope)
	}
	return b.String()
}
