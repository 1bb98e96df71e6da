package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

// OperationType tags a ledger entry. Each type carries its signed effect on
// balance so callers never branch on the kind.
type OperationType string

const (
	Deposit  OperationType = "deposit"
	Withdraw OperationType = "withdraw"
)

func (t OperationType) Valid() bool {
	return t == Deposit || t == Withdraw
}

// Sign is +1 for deposits and -1 for withdrawals.
func (t OperationType) Sign() int64 {
	if t == Withdraw {
		return -1
	}
	return 1
}

// Statement is one immutable ledger entry. Amount is in the smallest
// currency unit and always positive; the operation type decides direction.
// Sequence is the per-user acceptance order.
type Statement struct {
	ID          string
	UserID      userdomain.ID
	Type        OperationType
	Amount      int64
	Description string
	Sequence    int64
	CreatedAt   time.Time
}

// Effect is the signed contribution of this entry to the owner's balance.
func (s Statement) Effect() int64 {
	return s.Type.Sign() * s.Amount
}

// BalanceStatement is the balance query result: the full statement list
// together with the folded balance.
type BalanceStatement struct {
	Statements []Statement
	Balance    int64
}
