package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
	"github.com/AlibekovAA/fin-ledger/internal/user/domain"
	"github.com/AlibekovAA/fin-ledger/internal/user/repository"
)

func testUser(id, email string) domain.User {
	return domain.User{
		ID:           domain.ID(id),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "hashed",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	user := testUser("user-1", "alice@example.com")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := repo.FindByID(ctx, "user-1")
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", byID)
	}

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != "user-1" {
		t.Errorf("unexpected user: %+v", byEmail)
	}
}

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, testUser("user-1", "alice@example.com")); err != nil {
		t.Fatalf("create: %v", err)
	}

	err := repo.Create(ctx, testUser("user-2", "alice@example.com"))
	if !errors.Is(err, commonerrors.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The losing registration must not shadow the original.
	stored, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if stored.ID != "user-1" {
		t.Errorf("expected original user, got %+v", stored)
	}
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "missing@example.com"); !errors.Is(err, commonerrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
