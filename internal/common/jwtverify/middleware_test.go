package jwtverify_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/fin-ledger/internal/common/jwtverify"
	"github.com/AlibekovAA/fin-ledger/internal/common/logger"
)

var testSecret = []byte("test-secret-key-with-enough-bytes-0123")

func signToken(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user-123",
		"eml": "alice@example.com",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
}

func TestParseToken_Valid(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims(), testSecret)

	claims, err := jwtverify.ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "user-123" || claims.Email != "alice@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, validClaims(), []byte("another-secret-key-with-enough-bytes"))

	if _, err := jwtverify.ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	claims := validClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	token := signToken(t, jwt.SigningMethodHS256, claims, testSecret)

	if _, err := jwtverify.ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestParseToken_MissingClaims(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := signToken(t, jwt.SigningMethodHS256, claims, testSecret)

	if _, err := jwtverify.ParseToken(token, testSecret); err == nil {
		t.Fatal("expected error for missing email claim")
	}
}

func TestMiddleware_PassesClaimsToHandler(t *testing.T) {
	log, _ := logger.New("", "test", "info")
	token := signToken(t, jwt.SigningMethodHS256, validClaims(), testSecret)

	var got jwtverify.Claims
	handler := jwtverify.Middleware(string(testSecret), log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = jwtverify.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.UserID != "user-123" {
		t.Errorf("unexpected claims in context: %+v", got)
	}
}

func TestMiddleware_RejectsMissingHeader(t *testing.T) {
	log, _ := logger.New("", "test", "info")

	handler := jwtverify.Middleware(string(testSecret), log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
