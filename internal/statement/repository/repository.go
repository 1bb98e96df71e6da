package repository

import (
	"context"

	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

// Repository is the append-only ledger store. Entries are never mutated or
// deleted; ListByUser returns them oldest first by per-user sequence.
//
// The store does not validate user existence — that is the caller's
// responsibility (the Postgres implementation still fails when the owning
// user row is gone, since it locks that row).
type Repository interface {
	BeginTx(ctx context.Context) (Tx, error)
	ListByUser(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error)
	// FindByID is scoped to the owning user: an entry belonging to another
	// user is reported as not found, never returned.
	FindByID(ctx context.Context, userID userdomain.ID, statementID string) (domain.Statement, error)
}

// Tx is the exclusive per-user scope for balance-affecting writes. The unit
// "list entries, decide, append" is atomic per user: no other writer for the
// same user can interleave between ListByUserForUpdate and Commit. Writes
// are all-or-nothing; Rollback leaves the ledger unchanged.
//
// Rollback after Commit is a no-op, so `defer tx.Rollback(ctx)` is safe on
// every path.
type Tx interface {
	// ListByUserForUpdate acquires the user's exclusive scope and returns
	// the current entries, oldest first.
	ListByUserForUpdate(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error)
	// Append stages an entry and assigns its per-user sequence number.
	Append(ctx context.Context, st domain.Statement) (domain.Statement, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
