package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-backend/internal/models"
	"github.com/taskhub/taskhub-backend/internal/repository/memory"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("SecurePass123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "SecurePass123" {
		t.Fatal("hash equals plaintext")
	}
	if err := VerifyPassword("SecurePass123", hash); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := VerifyPassword("WrongPass123", hash); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestRepoVerifier(t *testing.T) {
	repos := memory.NewRepositories()
	hash, _ := HashPassword("SecurePass123")
	now := time.Now().UTC()
	_, err := repos.Users.Create(context.Background(), models.User{
		ID: uuid.NewString(), Username: "john_doe", Email: "john@example.com",
		PasswordHash: hash, FullName: "John Doe", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	v := NewRepoVerifier(repos.Users)
	if err := v.Verify(context.Background(), "john_doe", "SecurePass123"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if err := v.Verify(context.Background(), "john_doe", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if err := v.Verify(context.Background(), "nobody", "SecurePass123"); err == nil {
		t.Fatal("unknown username accepted")
	}
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(map[string]string{"admin": "s3cret"})
	if err := v.Verify(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("valid credentials rejected: %v", err)
	}
	if err := v.Verify(context.Background(), "admin", "other"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if err := v.Verify(context.Background(), "ghost", "s3cret"); err == nil {
		t.Fatal("unknown username accepted")
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	repos := memory.NewRepositories()
	c := Chain{
		NewStaticVerifier(map[string]string{"admin": "s3cret"}),
		NewRepoVerifier(repos.Users),
	}
	if err := c.Verify(context.Background(), "admin", "s3cret"); err != nil {
		t.Fatalf("chained static verifier rejected: %v", err)
	}
	if err := c.Verify(context.Background(), "admin", "wrong"); err == nil {
		t.Fatal("wrong password accepted by chain")
	}
}
