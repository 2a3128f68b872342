package service

import (
	"errors"
	"testing"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

func TestAttachReferrerBuildsThreeLevelChain(t *testing.T) {
	env := newServiceTestEnv(t, "referral_chain")

	top := env.createAffiliate(t, "top@example.com", "TOPCODE1")
	mid := env.registerReferred(t, "mid@example.com", "topcode1")
	env.createSubscription(t, mid.ID, "MIDCODE1", true, nil)
	low := env.registerReferred(t, "low@example.com", "MIDCODE1")
	env.createSubscription(t, low.ID, "LOWCODE1", true, nil)
	buyer := env.registerReferred(t, "buyer@example.com", " LOWCODE1 ")

	reloaded := env.reloadUser(t, buyer.ID)
	ancestors := reloaded.AncestorIDs()
	if ancestors[0] != low.ID || ancestors[1] != mid.ID || ancestors[2] != top.ID {
		t.Fatalf("unexpected ancestors: %v", ancestors)
	}

	var edges []models.Referral
	if err := env.db.Where("referred_id = ?", buyer.ID).Order("level asc").Find(&edges).Error; err != nil {
		t.Fatalf("load referrals failed: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("expected 3 referral edges, got %d", len(edges))
	}
	for i, edge := range edges {
		if edge.Level != i+1 || edge.ReferralCode != "LOWCODE1" {
			t.Fatalf("unexpected edge %d: %+v", i, edge)
		}
	}
	if edges[0].ReferrerID != low.ID || edges[2].ReferrerID != top.ID {
		t.Fatalf("unexpected edge referrers: %+v", edges)
	}

	stats, err := env.referralService.LevelStats(top.ID)
	if err != nil {
		t.Fatalf("level stats failed: %v", err)
	}
	if len(stats) != 3 || stats[0].Total != 1 || stats[1].Total != 1 || stats[2].Total != 1 {
		t.Fatalf("unexpected top stats: %+v", stats)
	}
}

func TestAttachReferrerCapsChainAtThreeLevels(t *testing.T) {
	env := newServiceTestEnv(t, "referral_cap")

	root := env.createAffiliate(t, "root@example.com", "ROOTCODE")
	first := env.registerReferred(t, "first@example.com", "ROOTCODE")
	env.createSubscription(t, first.ID, "FIRSTCOD", true, nil)
	second := env.registerReferred(t, "second@example.com", "FIRSTCOD")
	env.createSubscription(t, second.ID, "SECONDCO", true, nil)
	third := env.registerReferred(t, "third@example.com", "SECONDCO")
	env.createSubscription(t, third.ID, "THIRDCOD", true, nil)
	buyer := env.registerReferred(t, "buyer@example.com", "THIRDCOD")

	ancestors := env.reloadUser(t, buyer.ID).AncestorIDs()
	if ancestors != [3]uint{third.ID, second.ID, first.ID} {
		t.Fatalf("unexpected ancestors: %v", ancestors)
	}
	var edges int64
	env.db.Model(&models.Referral{}).Where("referred_id = ?", buyer.ID).Count(&edges)
	if edges != 3 {
		t.Fatalf("expected 3 referral edges, got %d", edges)
	}
	var rootEdges int64
	env.db.Model(&models.Referral{}).Where("referred_id = ? AND referrer_id = ?", buyer.ID, root.ID).Count(&rootEdges)
	if rootEdges != 0 {
		t.Fatalf("expected no edge beyond level 3, got %d", rootEdges)
	}

	order, payment := insertPaidOrder(t, env, buyer.ID, constants.OrderTypeServerPurchase, "1000")
	rows := distribute(t, env, payment, order, time.Now())
	if len(rows) != 3 {
		t.Fatalf("expected 3 commissions, got %d", len(rows))
	}
	for _, row := range rows {
		if row.ReferrerID == root.ID {
			t.Fatalf("expected no commission for level 4 ancestor, got %+v", row)
		}
	}
}

func TestAttachReferrerStopsOnCycle(t *testing.T) {
	env := newServiceTestEnv(t, "referral_cycle")

	alpha := env.createAffiliate(t, "alpha@example.com", "ALPHACOD")
	beta := env.createAffiliate(t, "beta@example.com", "BETACODE")
	if err := env.db.Model(&models.User{}).Where("id = ?", alpha.ID).Update("referred_by_id", beta.ID).Error; err != nil {
		t.Fatalf("link alpha failed: %v", err)
	}
	if err := env.db.Model(&models.User{}).Where("id = ?", beta.ID).Update("referred_by_id", alpha.ID).Error; err != nil {
		t.Fatalf("link beta failed: %v", err)
	}

	buyer := env.registerReferred(t, "buyer@example.com", "ALPHACOD")
	ancestors := env.reloadUser(t, buyer.ID).AncestorIDs()
	if ancestors != [3]uint{alpha.ID, beta.ID, 0} {
		t.Fatalf("unexpected ancestors: %v", ancestors)
	}
	var edges []models.Referral
	if err := env.db.Where("referred_id = ?", buyer.ID).Order("level asc").Find(&edges).Error; err != nil {
		t.Fatalf("load referrals failed: %v", err)
	}
	if len(edges) != 2 || edges[0].ReferrerID != alpha.ID || edges[1].ReferrerID != beta.ID {
		t.Fatalf("expected two distinct edges, got %+v", edges)
	}

	order, payment := insertPaidOrder(t, env, buyer.ID, constants.OrderTypeServerPurchase, "1000")
	if rows := distribute(t, env, payment, order, time.Now()); len(rows) != 2 {
		t.Fatalf("expected 2 commissions, got %d", len(rows))
	}
}

func TestAttachReferrerSkipsInactiveOrSelfCode(t *testing.T) {
	env := newServiceTestEnv(t, "referral_skip")

	expired := time.Now().Add(-time.Hour)
	owner := env.createUser(t, "owner@example.com", "")
	env.createSubscription(t, owner.ID, "EXPIRED1", true, &expired)

	user := env.registerReferred(t, "new@example.com", "EXPIRED1")
	if env.reloadUser(t, user.ID).ReferredByID != nil {
		t.Fatalf("expected no referrer for expired code")
	}

	unknown := env.registerReferred(t, "unknown@example.com", "NOSUCH11")
	if env.reloadUser(t, unknown.ID).ReferredByID != nil {
		t.Fatalf("expected no referrer for unknown code")
	}

	self := env.createAffiliate(t, "self@example.com", "SELFCODE")
	err := env.db.Transaction(func(tx *gorm.DB) error {
		return env.referralService.AttachReferrerTx(tx, self, "SELFCODE")
	})
	if err != nil {
		t.Fatalf("attach self failed: %v", err)
	}
	if env.reloadUser(t, self.ID).ReferredByID != nil {
		t.Fatalf("expected self referral to be ignored")
	}

	var count int64
	env.db.Model(&models.Referral{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no referral rows, got %d", count)
	}
}

func TestActivateFreeDoesNotShortenLifetime(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_free")
	user := env.createAffiliate(t, "life@example.com", "LIFECODE")

	now := time.Now()
	var activated bool
	err := env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		_, activated, err = env.affiliateService.ActivateFreeTx(tx, user.ID, 99, 30, now)
		return err
	})
	if err != nil {
		t.Fatalf("activate free failed: %v", err)
	}
	if activated {
		t.Fatalf("expected lifetime subscription to stay untouched")
	}
	sub, err := env.affiliateService.GetSubscription(user.ID)
	if err != nil || sub == nil {
		t.Fatalf("get subscription failed: %v", err)
	}
	if !sub.IsLifetime || sub.ExpiresAt != nil {
		t.Fatalf("expected lifetime subscription kept, got %+v", sub)
	}
}

func TestActivateFreeCreatesTimedSubscription(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_free_new")
	user := env.createUser(t, "fresh@example.com", "")

	now := time.Now()
	var sub *models.AffiliateSubscription
	err := env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		sub, _, err = env.affiliateService.ActivateFreeTx(tx, user.ID, 7, 30, now)
		return err
	})
	if err != nil {
		t.Fatalf("activate free failed: %v", err)
	}
	if sub == nil || !sub.IsActive || sub.IsLifetime || sub.ExpiresAt == nil {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if len(sub.ReferralCode) != affiliateCodeLength {
		t.Fatalf("expected generated referral code, got %q", sub.ReferralCode)
	}
	if sub.ActivationSource != constants.AffiliateSourceServerPurchase {
		t.Fatalf("unexpected activation source: %s", sub.ActivationSource)
	}
	if !sub.ExpiresAt.Equal(now.AddDate(0, 0, 30)) {
		t.Fatalf("unexpected expiry: %v", sub.ExpiresAt)
	}
}

func TestDeactivateExpiredSubscriptions(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_expire")
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(24 * time.Hour)
	expiredUser := env.createUser(t, "expired@example.com", "")
	activeUser := env.createUser(t, "active@example.com", "")
	env.createSubscription(t, expiredUser.ID, "EXPCODE1", true, &past)
	env.createSubscription(t, activeUser.ID, "ACTCODE1", true, &future)
	env.createAffiliate(t, "lifetime@example.com", "LIFECOD2")

	affected, err := env.affiliateService.DeactivateExpired(time.Now())
	if err != nil {
		t.Fatalf("deactivate expired failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 subscription deactivated, got %d", affected)
	}
	sub, _ := env.affiliateService.GetSubscription(expiredUser.ID)
	if sub.IsActive {
		t.Fatalf("expected expired subscription inactive")
	}
	sub, _ = env.affiliateService.GetSubscription(activeUser.ID)
	if !sub.IsActive {
		t.Fatalf("expected future subscription active")
	}
}

func TestAdminActivateAndDeactivate(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_admin")
	user := env.createUser(t, "admin-grant@example.com", "")

	if _, err := env.affiliateService.AdminActivate(user.ID, AdminActivateInput{Days: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero days, got %v", err)
	}
	sub, err := env.affiliateService.AdminActivate(user.ID, AdminActivateInput{Days: 10})
	if err != nil {
		t.Fatalf("admin activate failed: %v", err)
	}
	if sub.IsLifetime || sub.ExpiresAt == nil || sub.ActivationSource != constants.AffiliateSourceAdmin {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	code := sub.ReferralCode

	sub, err = env.affiliateService.AdminActivate(user.ID, AdminActivateInput{Lifetime: true})
	if err != nil {
		t.Fatalf("admin activate lifetime failed: %v", err)
	}
	if !sub.IsLifetime || sub.ExpiresAt != nil || sub.ReferralCode != code {
		t.Fatalf("expected lifetime upgrade with same code, got %+v", sub)
	}

	sub, err = env.affiliateService.AdminDeactivate(user.ID)
	if err != nil {
		t.Fatalf("admin deactivate failed: %v", err)
	}
	if sub.IsActive {
		t.Fatalf("expected subscription inactive")
	}
	if _, err := env.affiliateService.AdminDeactivate(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDashboard(t *testing.T) {
	env := newServiceTestEnv(t, "affiliate_dashboard")
	referrer := env.createAffiliate(t, "dash@example.com", "DASHCODE")
	env.registerReferred(t, "child@example.com", "DASHCODE")

	dashboard, err := env.affiliateService.GetDashboard(referrer.ID)
	if err != nil {
		t.Fatalf("get dashboard failed: %v", err)
	}
	if !dashboard.ProgramEnabled || !dashboard.Active {
		t.Fatalf("expected enabled and active dashboard, got %+v", dashboard)
	}
	if dashboard.ReferralStats[0].Total != 1 {
		t.Fatalf("expected 1 direct referral, got %+v", dashboard.ReferralStats)
	}
	assertMoney(t, "joining fee", dashboard.JoiningFee, "999")
	assertMoney(t, "pending", dashboard.PendingAmount, "0")
}
