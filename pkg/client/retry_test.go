package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", config.MaxAttempts)
	}
	if config.InitialBackoff != 500*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 500ms", config.InitialBackoff)
	}
	if config.MaxBackoff != 10*time.Second {
		t.Errorf("MaxBackoff = %v, want 10s", config.MaxBackoff)
	}
	if config.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", config.BackoffMultiplier)
	}
}

func TestRetryConfig_ForClass(t *testing.T) {
	base := DefaultRetryConfig()

	tests := []struct {
		name            string
		class           ErrorClass
		expectedInitial time.Duration
		expectedMax     time.Duration
	}{
		{"server", ErrorClassServer, 500 * time.Millisecond, 10 * time.Second},
		{"rate limit", ErrorClassRateLimit, 2 * time.Second, 30 * time.Second},
		{"network", ErrorClassNetwork, 1 * time.Second, 10 * time.Second},
		{"unknown", "", 500 * time.Millisecond, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.forClass(tt.class)
			if got.InitialBackoff != tt.expectedInitial {
				t.Errorf("InitialBackoff = %v, want %v", got.InitialBackoff, tt.expectedInitial)
			}
			if got.MaxBackoff != tt.expectedMax {
				t.Errorf("MaxBackoff = %v, want %v", got.MaxBackoff, tt.expectedMax)
			}
			if got.MaxAttempts != base.MaxAttempts {
				t.Errorf("MaxAttempts = %d, want %d", got.MaxAttempts, base.MaxAttempts)
			}
		})
	}
}

func TestRetryWithBackoff_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		return "", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_SuccessAfterRetry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		if calls < 3 {
			return ErrorClassServer, errors.New("503")
		}
		return "", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	clientErr := &APIError{StatusCode: 400, ErrorClass: ErrorClassClient}
	err := retryWithBackoff(context.Background(), fastRetryConfig(3), zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		return ErrorClassClient, clientErr
	})
	if !errors.Is(err, clientErr) {
		t.Errorf("error = %v, want the client error", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("client errors must not report ErrRetryExhausted")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	calls := 0
	lastErr := errors.New("network down")
	err := retryWithBackoff(context.Background(), fastRetryConfig(2), zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		return ErrorClassNetwork, lastErr
	})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("error = %v, want ErrRetryExhausted", err)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("error = %v, want it to wrap the last attempt's error", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = retryWithBackoff(context.Background(), fastRetryConfig(0), zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		return ErrorClassServer, errors.New("503")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    time.Hour,
		MaxBackoff:        time.Hour,
		BackoffMultiplier: 2.0,
	}

	calls := 0
	err := retryWithBackoff(ctx, cfg, zerolog.Nop(), func() (ErrorClass, error) {
		calls++
		cancel()
		return ErrorClassServer, errors.New("503")
	})
	if !errors.Is(err, ErrContextCancelled) {
		t.Errorf("error = %v, want ErrContextCancelled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want it to wrap context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
