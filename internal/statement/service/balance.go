package service

import (
	"context"

	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	"github.com/AlibekovAA/fin-ledger/internal/statement/repository"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

// BalanceEngine folds a user's ledger into a balance. It is a pure function
// of the entry sequence; the authoritative write-time check runs inside the
// repository transaction, not here.
type BalanceEngine struct {
	ledger repository.Repository
}

func NewBalanceEngine(ledger repository.Repository) *BalanceEngine {
	return &BalanceEngine{ledger: ledger}
}

// Fold sums the signed effect of each entry.
func Fold(entries []domain.Statement) int64 {
	var balance int64
	for _, st := range entries {
		balance += st.Effect()
	}
	return balance
}

func (e *BalanceEngine) CurrentBalance(ctx context.Context, userID userdomain.ID) (int64, error) {
	entries, err := e.ledger.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return Fold(entries), nil
}

// CanWithdraw is a snapshot pre-check only; under concurrency the decision
// is remade inside the exclusive per-user transaction.
func (e *BalanceEngine) CanWithdraw(ctx context.Context, userID userdomain.ID, amount int64) (bool, error) {
	balance, err := e.CurrentBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}
