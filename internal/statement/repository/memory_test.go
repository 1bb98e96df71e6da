package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	"github.com/AlibekovAA/fin-ledger/internal/statement/repository"
)

func TestMemoryRepository_AppendCommit(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	st, err := tx.Append(ctx, domain.Statement{ID: "a", UserID: "user-1", Type: domain.Deposit, Amount: 10})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if st.Sequence != 1 {
		t.Errorf("expected sequence 1, got %d", st.Sequence)
	}

	// Not visible until commit.
	entries, _ := repo.ListByUser(ctx, "user-1")
	if len(entries) != 0 {
		t.Errorf("uncommitted entry must not be visible, got %d entries", len(entries))
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	entries, _ = repo.ListByUser(ctx, "user-1")
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after commit, got %d", len(entries))
	}
	if entries[0].ID != "a" {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestMemoryRepository_Rollback(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	tx, _ := repo.BeginTx(ctx)
	if _, err := tx.Append(ctx, domain.Statement{ID: "a", UserID: "user-1", Type: domain.Deposit, Amount: 10}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	entries, _ := repo.ListByUser(ctx, "user-1")
	if len(entries) != 0 {
		t.Errorf("rolled back entry must not be visible, got %d entries", len(entries))
	}

	// A fresh transaction starts the sequence where the last commit left it.
	tx2, _ := repo.BeginTx(ctx)
	st, err := tx2.Append(ctx, domain.Statement{ID: "b", UserID: "user-1", Type: domain.Deposit, Amount: 10})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if st.Sequence != 1 {
		t.Errorf("expected sequence 1 after rollback, got %d", st.Sequence)
	}
	if err := tx2.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestMemoryRepository_RollbackAfterCommitIsNoop(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	tx, _ := repo.BeginTx(ctx)
	if _, err := tx.Append(ctx, domain.Statement{ID: "a", UserID: "user-1", Type: domain.Deposit, Amount: 10}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback after commit: %v", err)
	}

	entries, _ := repo.ListByUser(ctx, "user-1")
	if len(entries) != 1 {
		t.Errorf("commit must survive a later rollback, got %d entries", len(entries))
	}
}

func TestMemoryRepository_SequenceMonotonic(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		tx, _ := repo.BeginTx(ctx)
		st, err := tx.Append(ctx, domain.Statement{ID: string(rune('a' + i)), UserID: "user-1", Type: domain.Deposit, Amount: 1})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if st.Sequence != int64(i) {
			t.Errorf("expected sequence %d, got %d", i, st.Sequence)
		}
		if err := tx.Commit(ctx); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
}

func TestMemoryRepository_SingleUserScope(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	tx, _ := repo.BeginTx(ctx)
	if _, err := tx.ListByUserForUpdate(ctx, "user-1"); err != nil {
		t.Fatalf("list for update: %v", err)
	}

	if _, err := tx.Append(ctx, domain.Statement{ID: "a", UserID: "user-2", Type: domain.Deposit, Amount: 1}); err == nil {
		t.Error("expected error when a second user enters the transaction")
	}

	if err := tx.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}
}

func TestMemoryRepository_FindByID_OwnerScoped(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	tx, _ := repo.BeginTx(ctx)
	if _, err := tx.Append(ctx, domain.Statement{ID: "st-1", UserID: "owner", Type: domain.Deposit, Amount: 10}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := repo.FindByID(ctx, "owner", "st-1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}

	_, err := repo.FindByID(ctx, "intruder", "st-1")
	if !errors.Is(err, commonerrors.ErrStatementNotFound) {
		t.Errorf("expected ErrStatementNotFound for non-owner, got %v", err)
	}

	_, err = repo.FindByID(ctx, "owner", "missing")
	if !errors.Is(err, commonerrors.ErrStatementNotFound) {
		t.Errorf("expected ErrStatementNotFound for unknown id, got %v", err)
	}
}

func TestMemoryRepository_ConcurrentTransactionsSerialize(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			tx, err := repo.BeginTx(ctx)
			if err != nil {
				t.Errorf("begin tx: %v", err)
				return
			}
			if _, err := tx.ListByUserForUpdate(ctx, "user-1"); err != nil {
				t.Errorf("list for update: %v", err)
				_ = tx.Rollback(ctx)
				return
			}
			if _, err := tx.Append(ctx, domain.Statement{
				ID: "st-" + string(rune('a'+n)), UserID: "user-1", Type: domain.Deposit, Amount: 1,
			}); err != nil {
				t.Errorf("append: %v", err)
				_ = tx.Rollback(ctx)
				return
			}
			if err := tx.Commit(ctx); err != nil {
				t.Errorf("commit: %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries, _ := repo.ListByUser(ctx, "user-1")
	if len(entries) != workers {
		t.Fatalf("expected %d entries, got %d", workers, len(entries))
	}

	for i, st := range entries {
		if st.Sequence != int64(i)+1 {
			t.Errorf("entry %d has sequence %d, want %d", i, st.Sequence, i+1)
		}
	}
}
