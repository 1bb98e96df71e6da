package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/fin-ledger/internal/common/clock"
	"github.com/AlibekovAA/fin-ledger/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/fin-ledger/internal/common/crypto"
	"github.com/AlibekovAA/fin-ledger/internal/common/db"
	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
	"github.com/AlibekovAA/fin-ledger/internal/common/metrics"
	"github.com/AlibekovAA/fin-ledger/internal/events"
	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	"github.com/AlibekovAA/fin-ledger/internal/statement/repository"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
	userrepo "github.com/AlibekovAA/fin-ledger/internal/user/repository"
)

// StatementService orchestrates deposits, withdrawals, balance queries and
// point lookups. Every balance-affecting write runs as one atomic unit per
// user: read the ledger, decide, append — all inside the repository's
// exclusive per-user transaction.
type StatementService struct {
	users       userrepo.Repository
	ledger      repository.Repository
	engine      *BalanceEngine
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	publisher   events.Publisher
	log         *logger.Logger
}

type StatementServiceDeps struct {
	Users       userrepo.Repository
	Ledger      repository.Repository
	IDGenerator commoncrypto.IDGenerator
	Clock       clock.Clock
	Publisher   events.Publisher
	Log         *logger.Logger
}

func NewStatementService(deps StatementServiceDeps) *StatementService {
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &StatementService{
		users:       deps.Users,
		ledger:      deps.Ledger,
		engine:      NewBalanceEngine(deps.Ledger),
		idGenerator: deps.IDGenerator,
		clock:       deps.Clock,
		publisher:   publisher,
		log:         deps.Log,
	}
}

type CreateStatementInput struct {
	UserID      userdomain.ID
	Type        domain.OperationType
	Amount      int64
	Description string
}

func (s *StatementService) CreateStatement(ctx context.Context, input CreateStatementInput) (domain.Statement, error) {
	s.log.WithFields(ctx, logger.Fields{
		"user_id": string(input.UserID),
		"type":    string(input.Type),
		"amount":  input.Amount,
		"action":  "create_statement_attempt",
	}).Info("create statement attempt")

	if !input.Type.Valid() {
		return domain.Statement{}, commonerrors.ErrInvalidOperation
	}

	if input.Amount <= 0 {
		return domain.Statement{}, commonerrors.ErrInvalidAmount
	}

	if len(input.Description) > constants.DescriptionMaxLength {
		return domain.Statement{}, commonerrors.ErrDescriptionTooLong
	}

	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return domain.Statement{}, commonerrors.ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(input.UserID),
			"action":  "create_statement_user_lookup_failed",
		}).Errorf("create statement failed: user lookup error: %v", err)
		return domain.Statement{}, err
	}

	var recorded domain.Statement
	err := db.RetryWithBackoff(ctx, s.log, db.DefaultRetryConfig, func() error {
		st, err := s.appendChecked(ctx, input)
		if err != nil {
			return err
		}
		recorded = st
		return nil
	})
	if err != nil {
		if errors.Is(err, commonerrors.ErrInsufficientFunds) {
			metrics.WithdrawalsRejected.Inc()
			s.log.WithFields(ctx, logger.Fields{
				"user_id": string(input.UserID),
				"amount":  input.Amount,
				"action":  "create_statement_insufficient_funds",
			}).Warn("withdrawal rejected: insufficient funds")
		}
		return domain.Statement{}, err
	}

	metrics.StatementsCreated.WithLabelValues(string(recorded.Type)).Inc()
	s.log.WithFields(ctx, logger.Fields{
		"user_id":      string(recorded.UserID),
		"statement_id": recorded.ID,
		"sequence":     recorded.Sequence,
		"action":       "create_statement_success",
	}).Info("statement recorded")

	s.publishRecorded(ctx, recorded)

	return recorded, nil
}

// appendChecked is the atomic unit: list under the per-user lock, enforce
// the non-negative balance invariant, append, commit. A rejected withdrawal
// commits nothing.
func (s *StatementService) appendChecked(ctx context.Context, input CreateStatementInput) (domain.Statement, error) {
	tx, err := s.ledger.BeginTx(ctx)
	if err != nil {
		return domain.Statement{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entries, err := tx.ListByUserForUpdate(ctx, input.UserID)
	if err != nil {
		return domain.Statement{}, err
	}

	if input.Type == domain.Withdraw && Fold(entries) < input.Amount {
		return domain.Statement{}, commonerrors.ErrInsufficientFunds
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Statement{}, err
	}

	st, err := tx.Append(ctx, domain.Statement{
		ID:          id,
		UserID:      input.UserID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   s.clock.Now(),
	})
	if err != nil {
		return domain.Statement{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Statement{}, err
	}

	return st, nil
}

func (s *StatementService) publishRecorded(ctx context.Context, st domain.Statement) {
	publishCtx, cancel := context.WithTimeout(ctx, constants.PublishTimeout)
	defer cancel()

	err := s.publisher.PublishStatementRecorded(publishCtx, events.StatementRecorded{
		StatementID: st.ID,
		UserID:      string(st.UserID),
		Type:        string(st.Type),
		Amount:      st.Amount,
		Sequence:    st.Sequence,
		CreatedAt:   st.CreatedAt,
	})
	if err != nil {
		// The entry is committed; a lost event must not fail the request.
		metrics.EventsPublished.WithLabelValues("error").Inc()
		s.log.WithFields(ctx, logger.Fields{
			"statement_id": st.ID,
			"action":       "publish_statement_failed",
		}).Errorf("failed to publish statement event: %v", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func (s *StatementService) GetBalance(ctx context.Context, userID userdomain.ID) (domain.BalanceStatement, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return domain.BalanceStatement{}, err
	}

	entries, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return domain.BalanceStatement{}, err
	}

	metrics.BalanceQueries.Inc()

	return domain.BalanceStatement{
		Statements: entries,
		Balance:    Fold(entries),
	}, nil
}

func (s *StatementService) GetStatement(ctx context.Context, userID userdomain.ID, statementID string) (domain.Statement, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return domain.Statement{}, err
	}

	return s.ledger.FindByID(ctx, userID, statementID)
}
