package events

import (
	"context"
	"time"
)

// StatementRecorded is emitted after a ledger entry commits.
type StatementRecorded struct {
	StatementID string    `json:"statement_id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Sequence    int64     `json:"sequence"`
	CreatedAt   time.Time `json:"created_at"`
}

type Publisher interface {
	PublishStatementRecorded(ctx context.Context, event StatementRecorded) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStatementRecorded(ctx context.Context, event StatementRecorded) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
