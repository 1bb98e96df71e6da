package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	commonhttp "github.com/AlibekovAA/fin-ledger/internal/common/http"
	"github.com/AlibekovAA/fin-ledger/internal/common/jwtverify"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
	"github.com/AlibekovAA/fin-ledger/internal/statement/domain"
	"github.com/AlibekovAA/fin-ledger/internal/statement/service"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
)

type Router struct {
	service        *service.StatementService
	requestTimeout time.Duration
	log            *logger.Logger
}

func NewRouter(svc *service.StatementService, requestTimeout time.Duration, log *logger.Logger) *Router {
	return &Router{
		service:        svc,
		requestTimeout: requestTimeout,
		log:            log,
	}
}

// RegisterRoutes mounts all statement endpoints behind the token middleware.
// The ledger acted on is always the authenticated user's own.
func (rt *Router) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.Handle("/api/statements/deposit",
		auth(http.HandlerFunc(rt.withTimeout(commonhttp.RequireMethod(http.MethodPost)(rt.handleDeposit)))))
	mux.Handle("/api/statements/withdraw",
		auth(http.HandlerFunc(rt.withTimeout(commonhttp.RequireMethod(http.MethodPost)(rt.handleWithdraw)))))
	mux.Handle("/api/statements/balance",
		auth(http.HandlerFunc(rt.withTimeout(commonhttp.RequireMethod(http.MethodGet)(rt.handleBalance)))))
	mux.Handle("/api/statements/",
		auth(http.HandlerFunc(rt.withTimeout(commonhttp.RequireMethod(http.MethodGet)(rt.handleGetByID)))))
}

func (rt *Router) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return commonhttp.WithTimeout(rt.requestTimeout)(next)
}

type createStatementRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Description string `json:"description" validate:"max=255"`
}

type statementResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Sequence    int64     `json:"sequence"`
	CreatedAt   time.Time `json:"created_at"`
}

type balanceResponse struct {
	Statement []statementResponse `json:"statement"`
	Balance   int64               `json:"balance"`
}

func toStatementResponse(st domain.Statement) statementResponse {
	return statementResponse{
		ID:          st.ID,
		Type:        string(st.Type),
		Amount:      st.Amount,
		Description: st.Description,
		Sequence:    st.Sequence,
		CreatedAt:   st.CreatedAt,
	}
}

func (rt *Router) handleDeposit(w http.ResponseWriter, r *http.Request) {
	rt.handleCreate(w, r, domain.Deposit)
}

func (rt *Router) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	rt.handleCreate(w, r, domain.Withdraw)
}

func (rt *Router) handleCreate(w http.ResponseWriter, r *http.Request, opType domain.OperationType) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}

	var req createStatementRequest
	if !commonhttp.DecodeAndValidate(w, r, &req) {
		return
	}

	st, err := rt.service.CreateStatement(r.Context(), service.CreateStatementInput{
		UserID:      userdomain.ID(claims.UserID),
		Type:        opType,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, toStatementResponse(st))
}

func (rt *Router) handleBalance(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}

	balance, err := rt.service.GetBalance(r.Context(), userdomain.ID(claims.UserID))
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	entries := make([]statementResponse, 0, len(balance.Statements))
	for _, st := range balance.Statements {
		entries = append(entries, toStatementResponse(st))
	}

	commonhttp.WriteJSON(w, http.StatusOK, balanceResponse{
		Statement: entries,
		Balance:   balance.Balance,
	})
}

func (rt *Router) handleGetByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtverify.FromContext(r.Context())
	if !ok {
		commonhttp.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization")
		return
	}

	statementID := strings.TrimPrefix(r.URL.Path, "/api/statements/")
	if err := commonhttp.ValidateUUID(statementID); err != nil {
		commonhttp.WriteError(w, http.StatusBadRequest, "invalid statement id")
		return
	}

	st, err := rt.service.GetStatement(r.Context(), userdomain.ID(claims.UserID), statementID)
	if err != nil {
		rt.writeServiceError(w, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, toStatementResponse(st))
}

func (rt *Router) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commonerrors.ErrInvalidAmount):
		commonhttp.WriteError(w, http.StatusBadRequest, "amount must be a positive integer")
	case errors.Is(err, commonerrors.ErrInvalidOperation):
		commonhttp.WriteError(w, http.StatusBadRequest, "unknown operation type")
	case errors.Is(err, commonerrors.ErrDescriptionTooLong):
		commonhttp.WriteError(w, http.StatusBadRequest, "description too long")
	case errors.Is(err, commonerrors.ErrInsufficientFunds):
		commonhttp.WriteError(w, http.StatusUnprocessableEntity, "insufficient funds")
	case errors.Is(err, commonerrors.ErrUserNotFound):
		commonhttp.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, commonerrors.ErrStatementNotFound):
		commonhttp.WriteError(w, http.StatusNotFound, "statement not found")
	default:
		rt.log.Errorf("statement handler error: %v", err)
		commonhttp.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
