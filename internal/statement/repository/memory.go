package repository

import (
	"context"
	"errors"
	"sync"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

// MemoryRepository keeps each user's ledger as an append-only slice. Writers
// serialize through a per-user mutex (one lock per user id, lazily created);
// readers copy the slice under a read lock, which is snapshot-consistent
// because committed entries are never mutated.
type MemoryRepository struct {
	dataMu  sync.RWMutex
	entries map[userdomain.ID][]domain.Statement

	lockMu    sync.Mutex
	userLocks map[userdomain.ID]*sync.Mutex
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		entries:   make(map[userdomain.ID][]domain.Statement),
		userLocks: make(map[userdomain.ID]*sync.Mutex),
	}
}

func (r *MemoryRepository) userLock(userID userdomain.ID) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()

	mu, ok := r.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		r.userLocks[userID] = mu
	}
	return mu
}

func (r *MemoryRepository) BeginTx(ctx context.Context) (Tx, error) {
	return &memoryTx{repo: r}, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error) {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()

	stored := r.entries[userID]
	out := make([]domain.Statement, len(stored))
	copy(out, stored)
	return out, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, userID userdomain.ID, statementID string) (domain.Statement, error) {
	r.dataMu.RLock()
	defer r.dataMu.RUnlock()

	for _, st := range r.entries[userID] {
		if st.ID == statementID {
			return st, nil
		}
	}
	return domain.Statement{}, commonerrors.ErrStatementNotFound
}

// memoryTx buffers appends and applies them on Commit, holding the user's
// exclusive lock from the first ListByUserForUpdate until Commit/Rollback.
type memoryTx struct {
	repo     *MemoryRepository
	lockedID userdomain.ID
	locked   *sync.Mutex
	buffered []domain.Statement
	done     bool
}

var errTxUserScope = errors.New("ledger transaction is scoped to a single user")

func (tx *memoryTx) lockUser(userID userdomain.ID) error {
	if tx.locked != nil {
		if tx.lockedID != userID {
			return errTxUserScope
		}
		return nil
	}
	mu := tx.repo.userLock(userID)
	mu.Lock()
	tx.locked = mu
	tx.lockedID = userID
	return nil
}

func (tx *memoryTx) ListByUserForUpdate(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error) {
	if err := tx.lockUser(userID); err != nil {
		return nil, err
	}

	committed, err := tx.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(committed, tx.buffered...), nil
}

func (tx *memoryTx) Append(ctx context.Context, st domain.Statement) (domain.Statement, error) {
	if err := tx.lockUser(st.UserID); err != nil {
		return domain.Statement{}, err
	}

	tx.repo.dataMu.RLock()
	committed := len(tx.repo.entries[st.UserID])
	tx.repo.dataMu.RUnlock()

	st.Sequence = int64(committed+len(tx.buffered)) + 1
	tx.buffered = append(tx.buffered, st)
	return st, nil
}

func (tx *memoryTx) Commit(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true

	if len(tx.buffered) > 0 {
		tx.repo.dataMu.Lock()
		for _, st := range tx.buffered {
			tx.repo.entries[st.UserID] = append(tx.repo.entries[st.UserID], st)
		}
		tx.repo.dataMu.Unlock()
	}

	tx.release()
	return nil
}

func (tx *memoryTx) Rollback(ctx context.Context) error {
	if tx.done {
		return nil
	}
	tx.done = true

	tx.buffered = nil
	tx.release()
	return nil
}

func (tx *memoryTx) release() {
	if tx.locked != nil {
		tx.locked.Unlock()
		tx.locked = nil
	}
}

var _ Repository = (*MemoryRepository)(nil)
