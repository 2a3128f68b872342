package service

import (
	"errors"
	"testing"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

func provisionServer(t *testing.T, env *serviceTestEnv, userID uint, cycle string) *models.Server {
	t.Helper()
	plan := env.createPlan(t, "vps-"+cycle, "500")
	order := createServerOrder(t, env, userID, plan, cycle)
	var server *models.Server
	err := env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		server, err = env.serverService.CreateFromOrderTx(tx, order, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("create server failed: %v", err)
	}
	return server
}

func TestCreateFromOrderOncePerOrder(t *testing.T) {
	env := newServiceTestEnv(t, "server_once")
	user := env.createUser(t, "buyer@example.com", "")
	server := provisionServer(t, env, user.ID, constants.BillingCycleYearly)
	if server.ExpiresAt == nil || server.ExpiresAt.Before(time.Now().AddDate(0, 11, 0)) {
		t.Fatalf("expected yearly expiry, got %v", server.ExpiresAt)
	}

	var order models.Order
	env.db.First(&order, server.OrderID)
	var again *models.Server
	err := env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		again, err = env.serverService.CreateFromOrderTx(tx, &order, time.Now())
		return err
	})
	if err != nil {
		t.Fatalf("create server again failed: %v", err)
	}
	if again.ID != server.ID {
		t.Fatalf("expected existing server returned")
	}
}

func TestServerAdminTransitions(t *testing.T) {
	env := newServiceTestEnv(t, "server_transitions")
	user := env.createUser(t, "buyer@example.com", "")
	server := provisionServer(t, env, user.ID, constants.BillingCycleMonthly)

	suspended := constants.ServerStatusSuspended
	if _, err := env.serverService.AdminUpdate(server.ID, AdminUpdateServerInput{Status: &suspended}); !errors.Is(err, ErrServerStatusInvalid) {
		t.Fatalf("expected provisioning to suspended rejected, got %v", err)
	}

	active := constants.ServerStatusActive
	ip := "10.0.0.12"
	updated, err := env.serverService.AdminUpdate(server.ID, AdminUpdateServerInput{Status: &active, IPAddress: &ip})
	if err != nil {
		t.Fatalf("activate server failed: %v", err)
	}
	if updated.Status != constants.ServerStatusActive || updated.ActivatedAt == nil || updated.IPAddress != ip {
		t.Fatalf("unexpected active server: %+v", updated)
	}

	badIP := "10.0.0.999"
	if _, err := env.serverService.AdminUpdate(server.ID, AdminUpdateServerInput{IPAddress: &badIP}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad ip, got %v", err)
	}

	terminated := constants.ServerStatusTerminated
	updated, err = env.serverService.AdminUpdate(server.ID, AdminUpdateServerInput{Status: &terminated})
	if err != nil {
		t.Fatalf("terminate server failed: %v", err)
	}
	if updated.TerminatedAt == nil {
		t.Fatalf("expected terminated timestamp")
	}
	if _, err := env.serverService.AdminUpdate(server.ID, AdminUpdateServerInput{Status: &active}); !errors.Is(err, ErrServerStatusInvalid) {
		t.Fatalf("expected terminated server to be final, got %v", err)
	}
}

func TestServerOwnership(t *testing.T) {
	env := newServiceTestEnv(t, "server_owner")
	owner := env.createUser(t, "owner@example.com", "")
	other := env.createUser(t, "other@example.com", "")
	server := provisionServer(t, env, owner.ID, constants.BillingCycleMonthly)

	if _, err := env.serverService.GetForUser(other.ID, server.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign server, got %v", err)
	}
	got, err := env.serverService.GetForUser(owner.ID, server.ID)
	if err != nil || got.ID != server.ID {
		t.Fatalf("expected owner server, err=%v", err)
	}
	_, total, err := env.serverService.ListForUser(other.ID, "", 1, 20)
	if err != nil || total != 0 {
		t.Fatalf("expected no servers for other user, total=%d err=%v", total, err)
	}
}
