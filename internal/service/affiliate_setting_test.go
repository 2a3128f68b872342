package service

import (
	"errors"
	"testing"

	"github.com/hostdesk/internal/config"
	"github.com/hostdesk/internal/constants"
)

func TestGetAffiliateSettingFallback(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo, config.AffiliateConfig{})

	setting, err := svc.GetAffiliateSetting()
	if err != nil {
		t.Fatalf("get affiliate setting failed: %v", err)
	}
	if setting.Enabled {
		t.Fatalf("expected default enabled false")
	}
	if setting.JoiningFee != 0 || setting.HoldDays != 0 || setting.MinPayoutAmount != 0 {
		t.Fatalf("expected zero defaults, got %+v", setting)
	}
	for _, orderType := range []string{constants.OrderTypeServerPurchase, constants.OrderTypeAffiliateSubscription} {
		levels := setting.Rates[orderType]
		if len(levels) != constants.ReferralMaxLevel {
			t.Fatalf("expected %d levels for %s, got %v", constants.ReferralMaxLevel, orderType, levels)
		}
	}
}

func TestGetAffiliateSettingUsesConfigDefaults(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo(), testAffiliateConfig())

	setting, err := svc.GetAffiliateSetting()
	if err != nil {
		t.Fatalf("get affiliate setting failed: %v", err)
	}
	if !setting.Enabled || setting.JoiningFee != 999 {
		t.Fatalf("expected config defaults, got %+v", setting)
	}
	if got := setting.RateFor(constants.OrderTypeServerPurchase, 2).String(); got != "5" {
		t.Fatalf("expected level 2 server rate 5, got %s", got)
	}
	if !setting.RateFor(constants.OrderTypeServerPurchase, 4).IsZero() {
		t.Fatalf("expected level 4 rate zero")
	}
}

func TestUpdateAffiliateSettingNormalize(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo, config.AffiliateConfig{})

	setting, err := svc.UpdateAffiliateSetting(AffiliateSetting{
		Enabled:         true,
		JoiningFee:      499.999,
		HoldDays:        7,
		MinPayoutAmount: 250.126,
		TDSPercent:      5,
		GSTPercent:      18,
		Rates: map[string][]float64{
			constants.OrderTypeServerPurchase: {12.346, 6},
		},
	})
	if err != nil {
		t.Fatalf("update affiliate setting failed: %v", err)
	}
	if setting.JoiningFee != 500 {
		t.Fatalf("expected joining fee rounded to 500, got %v", setting.JoiningFee)
	}
	if setting.MinPayoutAmount != 250.13 {
		t.Fatalf("expected min payout rounded to 250.13, got %v", setting.MinPayoutAmount)
	}
	levels := setting.Rates[constants.OrderTypeServerPurchase]
	if len(levels) != 3 || levels[0] != 12.35 || levels[1] != 6 || levels[2] != 0 {
		t.Fatalf("unexpected server rates: %v", levels)
	}
	if len(setting.Rates[constants.OrderTypeAffiliateSubscription]) != 3 {
		t.Fatalf("expected subscription rates padded to 3 levels")
	}

	saved, ok := repo.store[constants.SettingKeyAffiliateConfig]
	if !ok {
		t.Fatalf("expected affiliate setting saved")
	}
	if saved["hold_days"] != 7 {
		t.Fatalf("expected saved hold days 7, got %v", saved["hold_days"])
	}

	reloaded, err := svc.GetAffiliateSetting()
	if err != nil {
		t.Fatalf("reload affiliate setting failed: %v", err)
	}
	if reloaded.HoldDays != 7 || reloaded.RateFor(constants.OrderTypeServerPurchase, 1).String() != "12.35" {
		t.Fatalf("unexpected reloaded setting: %+v", reloaded)
	}
}

func TestUpdateAffiliateSettingRejectsInvalid(t *testing.T) {
	svc := NewSettingService(newMockSettingRepo(), config.AffiliateConfig{})

	cases := []AffiliateSetting{
		{JoiningFee: -1},
		{HoldDays: -1},
		{TDSPercent: 60, GSTPercent: 40},
		{Rates: map[string][]float64{constants.OrderTypeServerPurchase: {101}}},
		{Rates: map[string][]float64{constants.OrderTypeServerPurchase: {1, 2, 3, 4}}},
		{Rates: map[string][]float64{"wallet_recharge": {1}}},
	}
	for i, item := range cases {
		if _, err := svc.UpdateAffiliateSetting(item); !errors.Is(err, ErrAffiliateConfigInvalid) {
			t.Fatalf("case %d: expected ErrAffiliateConfigInvalid, got %v", i, err)
		}
	}
}

func TestAffiliateSettingFromJSONParsesStrings(t *testing.T) {
	fallback := NormalizeAffiliateSetting(AffiliateSetting{})
	setting := affiliateSettingFromJSON(map[string]interface{}{
		"enabled":     "true",
		"joining_fee": "1499",
		"hold_days":   "14",
		"rates": map[string]interface{}{
			constants.OrderTypeAffiliateSubscription: []interface{}{"25", 10.0, "bad"},
		},
	}, fallback)
	if !setting.Enabled || setting.JoiningFee != 1499 || setting.HoldDays != 14 {
		t.Fatalf("unexpected parsed setting: %+v", setting)
	}
	levels := setting.Rates[constants.OrderTypeAffiliateSubscription]
	if levels[0] != 25 || levels[1] != 10 || levels[2] != 0 {
		t.Fatalf("unexpected parsed rates: %v", levels)
	}
}
