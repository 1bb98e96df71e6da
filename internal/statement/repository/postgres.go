package repository

import (
	"context"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/fin-ledger/internal/common/db"
	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

// PgRepository stores the ledger in Postgres. The exclusive per-user scope
// is a transaction holding FOR UPDATE on the owning user row, so concurrent
// writers for the same user serialize at the database even across processes.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

func (r *PgRepository) ListByUser(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error) {
	start := time.Now()
	rows, err := r.pool.Query(
		ctx,
		`SELECT id, user_id, type, amount, description, sequence, created_at
		 FROM statements
		 WHERE user_id = $1
		 ORDER BY sequence ASC`,
		string(userID),
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list statements", start)
	}
	defer rows.Close()

	entries, err := scanStatements(rows)
	db.MeasureQueryDuration("list statements", start)
	return entries, err
}

func (r *PgRepository) FindByID(ctx context.Context, userID userdomain.ID, statementID string) (domain.Statement, error) {
	start := time.Now()
	// user_id in the predicate is the authorization boundary: another
	// user's entry is indistinguishable from a missing one.
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, user_id, type, amount, description, sequence, created_at
		 FROM statements
		 WHERE user_id = $1 AND id = $2`,
		string(userID),
		statementID,
	)

	var st domain.Statement
	err := row.Scan(&st.ID, &st.UserID, &st.Type, &st.Amount, &st.Description, &st.Sequence, &st.CreatedAt)
	if err := db.HandleQueryError(err, commonerrors.ErrStatementNotFound, "find statement by id", start); err != nil {
		return domain.Statement{}, err
	}

	return st, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) ListByUserForUpdate(ctx context.Context, userID userdomain.ID) ([]domain.Statement, error) {
	start := time.Now()

	var lockedID string
	err := t.tx.QueryRow(
		ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`,
		string(userID),
	).Scan(&lockedID)
	if err := db.HandleQueryError(err, commonerrors.ErrUserNotFound, "lock user ledger", start); err != nil {
		return nil, err
	}

	rows, err := t.tx.Query(
		ctx,
		`SELECT id, user_id, type, amount, description, sequence, created_at
		 FROM statements
		 WHERE user_id = $1
		 ORDER BY sequence ASC`,
		string(userID),
	)
	if err != nil {
		return nil, db.HandleExecError(err, "list statements for update", start)
	}
	defer rows.Close()

	entries, err := scanStatements(rows)
	db.MeasureQueryDuration("list statements for update", start)
	return entries, err
}

func (t *pgTx) Append(ctx context.Context, st domain.Statement) (domain.Statement, error) {
	start := time.Now()
	err := t.tx.QueryRow(
		ctx,
		`INSERT INTO statements (id, user_id, type, amount, description, sequence, created_at)
		 VALUES ($1, $2, $3, $4, $5,
		         (SELECT COALESCE(MAX(sequence), 0) + 1 FROM statements WHERE user_id = $2),
		         $6)
		 RETURNING sequence`,
		st.ID,
		string(st.UserID),
		string(st.Type),
		st.Amount,
		st.Description,
		st.CreatedAt,
	).Scan(&st.Sequence)
	if err := db.HandleQueryError(err, commonerrors.ErrUserNotFound, "append statement", start); err != nil {
		return domain.Statement{}, err
	}

	return st, nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if err == pgx.ErrTxClosed {
		return nil
	}
	return err
}

func scanStatements(rows pgx.Rows) ([]domain.Statement, error) {
	var entries []domain.Statement
	for rows.Next() {
		var st domain.Statement
		if err := rows.Scan(&st.ID, &st.UserID, &st.Type, &st.Amount, &st.Description, &st.Sequence, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		entries = append(entries, st)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}
	return entries, nil
}

var _ Repository = (*PgRepository)(nil)
