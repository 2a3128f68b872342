package service

import (
	"errors"
	"testing"

	"github.com/hostdesk/internal/constants"
)

func TestAdminUpdateUser(t *testing.T) {
	env := newServiceTestEnv(t, "user_update")
	admin := env.createUser(t, "admin@example.com", constants.UserRoleAdmin)
	user := env.createUser(t, "agent@example.com", "")
	svc := NewUserService(env.userRepo)

	role := " Support "
	updated, err := svc.Update(admin.ID, user.ID, AdminUpdateUserInput{Role: &role})
	if err != nil {
		t.Fatalf("update role failed: %v", err)
	}
	if updated.Role != constants.UserRoleSupport || updated.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("unexpected updated user: %+v", updated)
	}

	same, err := svc.Update(admin.ID, user.ID, AdminUpdateUserInput{Role: &role})
	if err != nil || same.TokenVersion != updated.TokenVersion {
		t.Fatalf("expected unchanged update to keep token version, err=%v", err)
	}

	bad := "root"
	if _, err := svc.Update(admin.ID, user.ID, AdminUpdateUserInput{Role: &bad}); !errors.Is(err, ErrUserRoleInvalid) {
		t.Fatalf("expected ErrUserRoleInvalid, got %v", err)
	}
	if _, err := svc.Update(admin.ID, user.ID, AdminUpdateUserInput{Status: &bad}); !errors.Is(err, ErrUserStatusInvalid) {
		t.Fatalf("expected ErrUserStatusInvalid, got %v", err)
	}

	disabled := constants.UserStatusDisabled
	if _, err := svc.Update(admin.ID, admin.ID, AdminUpdateUserInput{Status: &disabled}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected self disable forbidden, got %v", err)
	}
	if _, err := svc.Get(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
