package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
)

var fastRetryConfig = RetryConfig{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2.0,
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection failure", &pgconn.PgError{Code: "08006"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"context canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRetryWithBackoff_SucceedsAfterTransientFailure(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	attempts := 0
	err := RetryWithBackoff(context.Background(), log, fastRetryConfig, func() error {
		attempts++
		if attempts < 3 {
			return &pgconn.PgError{Code: "40001"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithBackoff_BusinessErrorNotRetried(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	businessErr := errors.New("insufficient funds")

	attempts := 0
	err := RetryWithBackoff(context.Background(), log, fastRetryConfig, func() error {
		attempts++
		return businessErr
	})
	if !errors.Is(err, businessErr) {
		t.Fatalf("expected business error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetryWithBackoff_GivesUpAfterMaxAttempts(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	attempts := 0
	err := RetryWithBackoff(context.Background(), log, fastRetryConfig, func() error {
		attempts++
		return &pgconn.PgError{Code: "08006"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != fastRetryConfig.MaxAttempts {
		t.Errorf("expected %d attempts, got %d", fastRetryConfig.MaxAttempts, attempts)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Errorf("expected wrapped pg error, got %v", err)
	}
}

func TestRetryWithBackoff_ContextCancelled(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, log, fastRetryConfig, func() error {
		return &pgconn.PgError{Code: "08006"}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
