package hotel

import "context"

// API is the subset of *client.Client the stores use.
type API interface {
	GetJSON(ctx context.Context, path, token string, out any) error
	PostJSON(ctx context.Context, path, token string, in, out any) error
	Invalidate(ctx context.Context, path string) error
	MaxConcurrency() int
}
