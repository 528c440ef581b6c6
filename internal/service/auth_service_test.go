package service

import (
	"errors"
	"testing"
	"time"

	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/testutil"

	"github.com/google/uuid"
)

func newAuthEnv(t *testing.T) (AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	hub := testutil.NewTestHub()
	return NewAuthService(repository.NewUserRepo(env.db), hub), env
}

func TestLoginRotatesTokenVersion(t *testing.T) {
	auth, env := newAuthEnv(t)

	resp, err := auth.Login("employee@acme.test", "test1234")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token")
	}
	if resp.Role != model.RoleUser {
		t.Errorf("Expected role USER, got %s", resp.Role)
	}

	firstVersion := env.reloadUser(t, env.employee.ID).TokenVersion

	// First token works right after login.
	if _, err := auth.ValidateToken(resp.Token); err != nil {
		t.Fatalf("Expected fresh token to validate: %v", err)
	}

	// Logging in again rotates the version, killing the first session.
	if _, err := auth.Login("employee@acme.test", "test1234"); err != nil {
		t.Fatalf("Second login failed: %v", err)
	}
	secondVersion := env.reloadUser(t, env.employee.ID).TokenVersion
	if firstVersion == secondVersion {
		t.Error("Expected token version to rotate on login")
	}
	if _, err := auth.ValidateToken(resp.Token); err == nil {
		t.Error("Expected the first token to be dead after a second login")
	}
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	auth, env := newAuthEnv(t)

	if _, err := auth.Login("employee@acme.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := auth.Login("nobody@acme.test", "test1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	env.db.Model(&model.User{}).Where("id = ?", env.employee.ID).Update("is_active", false)
	if _, err := auth.Login("employee@acme.test", "test1234"); !errors.Is(err, ErrUserInactive) {
		t.Errorf("Expected ErrUserInactive, got %v", err)
	}
}

func TestValidateTokenEnforcesInactivityWindow(t *testing.T) {
	auth, env := newAuthEnv(t)

	resp, err := auth.Login("employee@acme.test", "test1234")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Push LastSeenAt past the 5 minute window.
	stale := time.Now().Add(-6 * time.Minute)
	env.db.Model(&model.User{}).Where("id = ?", env.employee.ID).Update("last_seen_at", stale)

	if _, err := auth.ValidateToken(resp.Token); !errors.Is(err, ErrSessionTimeout) {
		t.Fatalf("Expected ErrSessionTimeout, got %v", err)
	}

	// A heartbeat brings the session back.
	if err := auth.Heartbeat(env.employee.ID); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
	if _, err := auth.ValidateToken(resp.Token); err != nil {
		t.Errorf("Expected token to validate after heartbeat, got %v", err)
	}
}

// An out-of-band password reset rotates the token version the same way
// login does: a fresh UUID string, never a counter. Any live session must
// die once the stored version changes.
func TestOutOfBandTokenRotationKillsSessions(t *testing.T) {
	auth, env := newAuthEnv(t)

	resp, err := auth.Login("employee@acme.test", "test1234")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := auth.ValidateToken(resp.Token); err != nil {
		t.Fatalf("Expected fresh token to validate: %v", err)
	}

	// The same update the reset-password command issues.
	err = env.db.Model(&model.User{}).Where("id = ?", env.employee.ID).
		Update("token_version", uuid.New().String()).Error
	if err != nil {
		t.Fatalf("Failed to rotate token version: %v", err)
	}

	if _, err := auth.ValidateToken(resp.Token); err == nil {
		t.Error("Expected the old token to be rejected after rotation")
	}
}

func TestResetPassword(t *testing.T) {
	auth, _ := newAuthEnv(t)

	if err := auth.ResetPassword("employee@acme.test", "wrong", "newpass99"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Expected ErrWrongPassword, got %v", err)
	}
	if err := auth.ResetPassword("employee@acme.test", "test1234", "newpass99"); err != nil {
		t.Fatalf("ResetPassword failed: %v", err)
	}
	if _, err := auth.Login("employee@acme.test", "test1234"); err == nil {
		t.Error("Expected old password to stop working")
	}
	if _, err := auth.Login("employee@acme.test", "newpass99"); err != nil {
		t.Errorf("Expected new password to work, got %v", err)
	}
}
