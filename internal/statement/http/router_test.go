package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authservice "github.com/AlibekovAA/fin-ledger/internal/auth/service"
	"github.com/AlibekovAA/fin-ledger/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/fin-ledger/internal/common/crypto"
	"github.com/AlibekovAA/fin-ledger/internal/common/jwtverify"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
	statementhttp "github.com/AlibekovAA/fin-ledger/internal/statement/http"
	statementrepo "github.com/AlibekovAA/fin-ledger/internal/statement/repository"
	statementservice "github.com/AlibekovAA/fin-ledger/internal/statement/service"
	userdomain "github.com/AlibekovAA/fin-ledger/internal/user/domain"
	userrepo "github.com/AlibekovAA/fin-ledger/internal/user/repository"
)

const testJWTSecret = "test-secret-key-with-enough-bytes-0123"

// setupRouter builds the statement routes with memory stores and returns a
// valid bearer token for a seeded user.
func setupRouter(t *testing.T) (http.Handler, string) {
	t.Helper()

	log, _ := logger.New("", "test", "info")
	users := userrepo.NewMemoryRepository()
	ledger := statementrepo.NewMemoryRepository()
	mockClock := clock.NewMockClock(time.Now())
	idGen := commoncrypto.NewUUIDGenerator()

	userID, _ := idGen.NewID()
	if err := users.Create(context.Background(), userdomain.User{
		ID:           userdomain.ID(userID),
		Name:         "Alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed",
		CreatedAt:    mockClock.Now(),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	issuer := authservice.NewTokenIssuer(testJWTSecret, idGen, 30*time.Minute, mockClock)
	token, err := issuer.IssueAccessToken(userdomain.User{
		ID:    userdomain.ID(userID),
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	svc := statementservice.NewStatementService(statementservice.StatementServiceDeps{
		Users:       users,
		Ledger:      ledger,
		IDGenerator: idGen,
		Clock:       mockClock,
		Log:         log,
	})

	mux := http.NewServeMux()
	statementhttp.NewRouter(svc, 5*time.Second, log).RegisterRoutes(mux, jwtverify.Middleware(testJWTSecret, log))
	return mux, token
}

func doJSON(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestDeposit_Created(t *testing.T) {
	handler, token := setupRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/statements/deposit",
		`{"amount":100,"description":"salary"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
		Sequence    int64  `json:"sequence"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Type != "deposit" || resp.Amount != 100 || resp.Sequence != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Description != "salary" {
		t.Errorf("expected description to round-trip, got %q", resp.Description)
	}
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	handler, token := setupRouter(t)

	doJSON(t, handler, http.MethodPost, "/api/statements/deposit", `{"amount":25}`, token)

	rec := doJSON(t, handler, http.MethodPost, "/api/statements/withdraw", `{"amount":26}`, token)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBalance_ListsStatements(t *testing.T) {
	handler, token := setupRouter(t)

	doJSON(t, handler, http.MethodPost, "/api/statements/deposit", `{"amount":100}`, token)
	doJSON(t, handler, http.MethodPost, "/api/statements/withdraw", `{"amount":30}`, token)

	rec := doJSON(t, handler, http.MethodGet, "/api/statements/balance", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Statement []struct {
			Type     string `json:"type"`
			Amount   int64  `json:"amount"`
			Sequence int64  `json:"sequence"`
		} `json:"statement"`
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	if resp.Balance != 70 {
		t.Errorf("expected balance 70, got %d", resp.Balance)
	}
	if len(resp.Statement) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(resp.Statement))
	}
	if resp.Statement[0].Sequence != 1 || resp.Statement[1].Sequence != 2 {
		t.Errorf("statements out of order: %+v", resp.Statement)
	}
}

func TestBalance_EmptyLedger(t *testing.T) {
	handler, token := setupRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/statements/balance", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Statement []json.RawMessage `json:"statement"`
		Balance   int64             `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Balance != 0 {
		t.Errorf("expected balance 0, got %d", resp.Balance)
	}
	if resp.Statement == nil {
		t.Error("expected empty statement list, got null")
	}
}

func TestGetStatement_ByID(t *testing.T) {
	handler, token := setupRouter(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/statements/deposit", `{"amount":50}`, token)

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/statements/"+created.ID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got struct {
		ID     string `json:"id"`
		Amount int64  `json:"amount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if got.ID != created.ID || got.Amount != 50 {
		t.Errorf("unexpected statement: %+v", got)
	}
}

func TestGetStatement_BadID(t *testing.T) {
	handler, token := setupRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/statements/not-a-uuid", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetStatement_Unknown(t *testing.T) {
	handler, token := setupRouter(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/statements/9b8f1c2e-5f63-4d7a-9a61-0b2f3a4c5d6e", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestStatements_RequireToken(t *testing.T) {
	handler, _ := setupRouter(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/statements/deposit"},
		{http.MethodPost, "/api/statements/withdraw"},
		{http.MethodGet, "/api/statements/balance"},
		{http.MethodGet, "/api/statements/9b8f1c2e-5f63-4d7a-9a61-0b2f3a4c5d6e"},
	}

	for _, p := range paths {
		rec := doJSON(t, handler, p.method, p.path, `{"amount":10}`, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestDeposit_InvalidAmount(t *testing.T) {
	handler, token := setupRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"zero", `{"amount":0}`},
		{"negative", `{"amount":-10}`},
		{"missing", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/statements/deposit", tt.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
