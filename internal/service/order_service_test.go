package service

import (
	"errors"
	"testing"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculateOrderAmounts(t *testing.T) {
	cases := []struct {
		original string
		discount string
		tax      string
		want     [3]string
	}{
		{"1000", "0", "18", [3]string{"1000", "180", "1180"}},
		{"3000", "5", "18", [3]string{"2850", "513", "3363"}},
		{"999", "0", "18", [3]string{"999", "179.82", "1178.82"}},
		{"12000", "15", "0", [3]string{"10200", "0", "10200"}},
	}
	for _, item := range cases {
		got := CalculateOrderAmounts(decimal.RequireFromString(item.original), decimal.RequireFromString(item.discount), decimal.RequireFromString(item.tax))
		if got.Subtotal.String() != item.want[0] || got.Tax.String() != item.want[1] || got.Total.String() != item.want[2] {
			t.Fatalf("original %s: got subtotal=%s tax=%s total=%s", item.original, got.Subtotal, got.Tax, got.Total)
		}
	}
}

func TestQuotePlanCycles(t *testing.T) {
	plan := &models.Plan{
		MonthlyPrice:             models.NewMoneyFromDecimal(decimal.NewFromInt(1000)),
		QuarterlyDiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		YearlyDiscountPercent:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
	}
	quote, err := QuotePlan(plan, " Yearly ")
	if err != nil {
		t.Fatalf("quote plan failed: %v", err)
	}
	if quote.Months != 12 || quote.OriginalAmount.String() != "12000" || quote.Subtotal.String() != "10200" {
		t.Fatalf("unexpected yearly quote: %+v", quote)
	}
	quote, err = QuotePlan(plan, constants.BillingCycleMonthly)
	if err != nil {
		t.Fatalf("quote plan failed: %v", err)
	}
	if !quote.DiscountPercent.IsZero() || quote.Subtotal.String() != "1000" {
		t.Fatalf("expected monthly without discount, got %+v", quote)
	}
	if _, err := QuotePlan(plan, "weekly"); !errors.Is(err, ErrBillingCycleInvalid) {
		t.Fatalf("expected ErrBillingCycleInvalid, got %v", err)
	}
}

func TestCreateServerOrderQuarterly(t *testing.T) {
	env := newServiceTestEnv(t, "order_quarterly")
	user := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-4", "1000")

	order, err := env.orderService.CreateServerOrder(user.ID, CreateServerOrderInput{
		PlanID:       plan.ID,
		BillingCycle: constants.BillingCycleQuarterly,
		Hostname:     " DB-01.Example.com ",
	})
	if err != nil {
		t.Fatalf("create server order failed: %v", err)
	}
	if order.Hostname != "db-01.example.com" || order.BillingCycle != constants.BillingCycleQuarterly {
		t.Fatalf("unexpected order: %+v", order)
	}
	assertMoney(t, "original", order.OriginalAmount, "3000")
	assertMoney(t, "discount", order.DiscountAmount, "150")
	assertMoney(t, "subtotal", order.Subtotal, "2850")
	assertMoney(t, "total", order.TotalAmount, "3363")
	if order.Status != constants.OrderStatusPending || order.ExpiresAt == nil || order.Currency != "INR" {
		t.Fatalf("unexpected order state: %+v", order)
	}
	if order.ExpiresAt.Sub(time.Now()) > 31*time.Minute {
		t.Fatalf("unexpected expiry: %v", order.ExpiresAt)
	}
	if order.Invoice == nil || order.Invoice.InvoiceNo == "" {
		t.Fatalf("expected invoice issued")
	}
	assertMoney(t, "invoice total", order.Invoice.Total, "3363")
}

func TestCreateServerOrderValidation(t *testing.T) {
	env := newServiceTestEnv(t, "order_validation")
	user := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	retired := env.createPlan(t, "vps-old", "300")
	env.db.Model(&models.Plan{}).Where("id = ?", retired.ID).Update("is_active", false)

	cases := []struct {
		input CreateServerOrderInput
		err   error
	}{
		{CreateServerOrderInput{PlanID: 999, BillingCycle: "monthly", Hostname: "a.example.com"}, ErrNotFound},
		{CreateServerOrderInput{PlanID: retired.ID, BillingCycle: "monthly", Hostname: "a.example.com"}, ErrPlanInactive},
		{CreateServerOrderInput{PlanID: plan.ID, BillingCycle: "monthly", Hostname: "  "}, ErrOrderHostnameNeeded},
		{CreateServerOrderInput{PlanID: plan.ID, BillingCycle: "monthly", Hostname: "-bad-.example.com"}, ErrInvalidInput},
		{CreateServerOrderInput{PlanID: plan.ID, BillingCycle: "monthly", Hostname: "under_score.example.com"}, ErrInvalidInput},
		{CreateServerOrderInput{PlanID: plan.ID, BillingCycle: "daily", Hostname: "a.example.com"}, ErrBillingCycleInvalid},
	}
	for i, item := range cases {
		if _, err := env.orderService.CreateServerOrder(user.ID, item.input); !errors.Is(err, item.err) {
			t.Fatalf("case %d: expected %v, got %v", i, item.err, err)
		}
	}
}

func TestCreateAffiliateOrderDisabled(t *testing.T) {
	env := newServiceTestEnv(t, "order_affiliate_disabled")
	user := env.createUser(t, "buyer@example.com", "")
	env.updateAffiliateSetting(t, func(setting *AffiliateSetting) { setting.Enabled = false })
	if _, err := env.orderService.CreateAffiliateOrder(user.ID); !errors.Is(err, ErrAffiliateDisabled) {
		t.Fatalf("expected ErrAffiliateDisabled, got %v", err)
	}
}

func TestCancelOrderVoidsInvoice(t *testing.T) {
	env := newServiceTestEnv(t, "order_cancel")
	owner := env.createUser(t, "owner@example.com", "")
	other := env.createUser(t, "other@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	order := createServerOrder(t, env, owner.ID, plan, constants.BillingCycleMonthly)

	if _, err := env.orderService.CancelForUser(other.ID, order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign cancel, got %v", err)
	}
	cancelled, err := env.orderService.CancelForUser(owner.ID, order.ID)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled order: %+v", cancelled)
	}
	invoice, err := env.invoiceService.GetForUser(owner.ID, order.Invoice.ID)
	if err != nil {
		t.Fatalf("get invoice failed: %v", err)
	}
	if invoice.Status != constants.InvoiceStatusVoid {
		t.Fatalf("expected void invoice, got %s", invoice.Status)
	}
	if _, err := env.orderService.CancelForAdmin(order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected cancelled order to be terminal, got %v", err)
	}
}

func TestCancelExpiredOrders(t *testing.T) {
	env := newServiceTestEnv(t, "order_expire")
	user := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	stale := createServerOrder(t, env, user.ID, plan, constants.BillingCycleMonthly)
	fresh := createServerOrder(t, env, user.ID, plan, constants.BillingCycleMonthly)
	past := time.Now().Add(-time.Minute)
	env.db.Model(&models.Order{}).Where("id = ?", stale.ID).Update("expires_at", past)

	ok, err := env.orderService.CancelExpiredOrder(fresh.ID)
	if err != nil || ok {
		t.Fatalf("expected fresh order kept, ok=%v err=%v", ok, err)
	}
	count, err := env.orderService.CancelExpired(time.Now(), 50)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired order cancelled, got %d", count)
	}
	if env.reloadOrder(t, stale.ID).Status != constants.OrderStatusCancelled {
		t.Fatalf("expected stale order cancelled")
	}
	if env.reloadOrder(t, fresh.ID).Status != constants.OrderStatusPending {
		t.Fatalf("expected fresh order pending")
	}
	ok, err = env.orderService.CancelExpiredOrder(stale.ID)
	if err != nil || ok {
		t.Fatalf("expected repeat timeout to be a no-op, ok=%v err=%v", ok, err)
	}
}
