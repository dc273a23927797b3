package service

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mailer, runner := newTestService(t)

	user, err := svc.Register(context.Background(), "User@Example.com", "supersecret", "Иван", "Петров", "ivan")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Errorf("email must be normalized, got %s", user.Email)
	}
	if user.EmailVerified {
		t.Error("fresh user must not be verified")
	}
	if user.PasswordHash == "supersecret" {
		t.Error("password stored in plain text")
	}

	if len(runner.names) != 1 || runner.names[0] != "verification_email" {
		t.Fatalf("expected a queued verification_email task, got %v", runner.names)
	}
	if len(mailer.to) != 1 || mailer.to[0] != "user@example.com" {
		t.Fatalf("verification mail not sent, got %v", mailer.to)
	}

	token, err := svc.Login(context.Background(), "user@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	id, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if id != user.ID {
		t.Fatalf("token subject = %d, want %d", id, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "a@b.c", "supersecret", "", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.c", "othersecret", "", "", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	if _, err := svc.Register(context.Background(), "a@b.c", "supersecret", "", "", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.c", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@b.c", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyToken(%q): expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyEmail(t *testing.T) {
	svc, repo, mailer, _ := newTestService(t)

	user, err := svc.Register(context.Background(), "a@b.c", "supersecret", "", "", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), "wrong-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), mailer.tokens[0]); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}

	updated, _ := repo.GetUser(context.Background(), user.ID)
	if !updated.EmailVerified {
		t.Fatal("email_verified not set")
	}
	if updated.VerifyToken != "" {
		t.Fatal("verify token must be cleared after use")
	}

	// The token is single-use.
	if err := svc.VerifyEmail(context.Background(), mailer.tokens[0]); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got %v", err)
	}
}
