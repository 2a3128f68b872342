package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculatePayoutDeductions(t *testing.T) {
	cases := []struct {
		gross string
		tds   string
		gst   string
		want  [3]string
	}{
		{"1000", "5", "18", [3]string{"50", "180", "770"}},
		{"333.33", "5", "18", [3]string{"16.67", "60", "256.66"}},
		{"100", "0", "0", [3]string{"0", "0", "100"}},
	}
	for _, item := range cases {
		got := CalculatePayoutDeductions(decimal.RequireFromString(item.gross), decimal.RequireFromString(item.tds), decimal.RequireFromString(item.gst))
		if got.TDSAmount.String() != item.want[0] || got.GSTAmount.String() != item.want[1] || got.Net.String() != item.want[2] {
			t.Fatalf("gross %s: got tds=%s gst=%s net=%s", item.gross, got.TDSAmount, got.GSTAmount, got.Net)
		}
	}
}

// seedApprovedCommission 为推荐人写入一条已确认佣金
func seedApprovedCommission(t *testing.T, env *serviceTestEnv, referrerID, buyerID uint, amount string, approvedAt time.Time) *models.Commission {
	t.Helper()
	order, payment := insertPaidOrder(t, env, buyerID, constants.OrderTypeServerPurchase, amount)
	row := &models.Commission{
		ReferrerID:   referrerID,
		SourceUserID: buyerID,
		OrderID:      order.ID,
		PaymentID:    payment.ID,
		Level:        1,
		OrderType:    order.OrderType,
		BaseAmount:   order.Subtotal,
		RatePercent:  models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Amount:       models.NewMoneyFromDecimal(mustDecimal(t, amount)),
		PaidAmount:   models.ZeroMoney(),
		Status:       constants.CommissionStatusApproved,
		ApprovedAt:   &approvedAt,
	}
	if err := env.db.Create(row).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	return row
}

func recompute(t *testing.T, env *serviceTestEnv, userID uint) UserBalances {
	t.Helper()
	balances, err := env.commissionService.RecomputeBalancesTx(env.db, userID)
	if err != nil {
		t.Fatalf("recompute balances failed: %v", err)
	}
	return balances
}

func TestPayoutRequestValidation(t *testing.T) {
	env := newServiceTestEnv(t, "payout_validation")
	affiliate := env.createAffiliate(t, "aff@example.com", "AFFCODE1")
	buyer := env.createUser(t, "buyer@example.com", "")
	seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "300", time.Now())
	recompute(t, env, affiliate.ID)

	cases := []struct {
		input PayoutRequestInput
		err   error
	}{
		{PayoutRequestInput{Amount: decimal.Zero, Method: "upi", Account: "aff@upi"}, ErrPayoutAmountInvalid},
		{PayoutRequestInput{Amount: decimal.NewFromInt(50), Method: "upi", Account: "aff@upi"}, ErrPayoutBelowMinimum},
		{PayoutRequestInput{Amount: decimal.NewFromInt(150), Method: "paypal", Account: "aff@upi"}, ErrPayoutMethodInvalid},
		{PayoutRequestInput{Amount: decimal.NewFromInt(150), Method: "upi", Account: "  "}, ErrPayoutAccountRequired},
		{PayoutRequestInput{Amount: decimal.NewFromInt(301), Method: "upi", Account: "aff@upi"}, ErrPayoutInsufficient},
	}
	for i, item := range cases {
		if _, err := env.payoutService.Request(affiliate.ID, item.input); !errors.Is(err, item.err) {
			t.Fatalf("case %d: expected %v, got %v", i, item.err, err)
		}
	}

	env.updateAffiliateSetting(t, func(setting *AffiliateSetting) { setting.Enabled = false })
	if _, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(150), Method: "upi", Account: "aff@upi"}); !errors.Is(err, ErrAffiliateDisabled) {
		t.Fatalf("expected ErrAffiliateDisabled, got %v", err)
	}
}

func TestPayoutRequestReservesBalance(t *testing.T) {
	env := newServiceTestEnv(t, "payout_reserve")
	affiliate := env.createAffiliate(t, "aff@example.com", "AFFCODE1")
	buyer := env.createUser(t, "buyer@example.com", "")
	seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "300", time.Now())
	recompute(t, env, affiliate.ID)

	payout, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{
		Amount:  decimal.NewFromInt(200),
		Method:  " UPI ",
		Account: "aff@upi",
	})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if payout.Status != constants.PayoutStatusRequested || payout.Method != constants.PayoutMethodUPI {
		t.Fatalf("unexpected payout: %+v", payout)
	}
	var stored models.Payout
	if err := env.db.First(&stored, payout.ID).Error; err != nil {
		t.Fatalf("load payout failed: %v", err)
	}
	assertMoney(t, "tds percent", stored.TDSPercent, "10")
	assertMoney(t, "tds", stored.TDSAmount, "20")
	assertMoney(t, "gst percent", stored.GSTPercent, "18")
	assertMoney(t, "gst", stored.GSTAmount, "36")
	assertMoney(t, "net", stored.NetAmount, "144")
	assertMoney(t, "reserved available", env.reloadUser(t, affiliate.ID).AvailableBalance, "100")

	if _, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(100), Method: "upi", Account: "aff@upi"}); !errors.Is(err, ErrPayoutOpenExists) {
		t.Fatalf("expected ErrPayoutOpenExists, got %v", err)
	}
}

func TestPayoutRequestSerializedPerUser(t *testing.T) {
	env := newServiceTestEnv(t, "payout_serialized")
	affiliate := env.createAffiliate(t, "aff@example.com", "AFFCODE1")
	buyer := env.createUser(t, "buyer@example.com", "")
	seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "300", time.Now())
	recompute(t, env, affiliate.ID)

	if _, err := env.payoutService.Request(affiliate.ID+100, PayoutRequestInput{Amount: decimal.NewFromInt(150), Method: "upi", Account: "ghost@upi"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}

	const workers = 4
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(250), Method: "upi", Account: "aff@upi"})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	var open int64
	if err := env.db.Model(&models.Payout{}).Where("user_id = ?", affiliate.ID).Count(&open).Error; err != nil {
		t.Fatalf("count payouts failed: %v", err)
	}
	if open > 1 || int(open) != succeeded {
		t.Fatalf("expected at most one payout, got rows=%d succeeded=%d", open, succeeded)
	}
	if open == 0 {
		if _, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(250), Method: "upi", Account: "aff@upi"}); err != nil {
			t.Fatalf("request payout failed: %v", err)
		}
	}
	if _, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(100), Method: "upi", Account: "aff@upi"}); !errors.Is(err, ErrPayoutOpenExists) {
		t.Fatalf("expected ErrPayoutOpenExists, got %v", err)
	}
	assertMoney(t, "available after reserve", env.reloadUser(t, affiliate.ID).AvailableBalance, "50")
}

func TestPayoutReviewTransitions(t *testing.T) {
	env := newServiceTestEnv(t, "payout_review")
	admin := env.createUser(t, "admin@example.com", constants.UserRoleAdmin)
	affiliate := env.createAffiliate(t, "aff@example.com", "AFFCODE1")
	buyer := env.createUser(t, "buyer@example.com", "")
	seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "300", time.Now())
	recompute(t, env, affiliate.ID)

	payout, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(200), Method: "bank_transfer", Account: "IFSC0001 123456"})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "complete"}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("expected complete from requested to fail, got %v", err)
	}
	if _, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "pay"}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("expected unknown action to fail, got %v", err)
	}

	rejected, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "reject", AdminNote: "wrong account"})
	if err != nil {
		t.Fatalf("reject payout failed: %v", err)
	}
	if rejected.Status != constants.PayoutStatusRejected || rejected.AdminNote != "wrong account" {
		t.Fatalf("unexpected rejected payout: %+v", rejected)
	}
	assertMoney(t, "released available", env.reloadUser(t, affiliate.ID).AvailableBalance, "300")
	if _, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "approve"}); !errors.Is(err, ErrPayoutStatusInvalid) {
		t.Fatalf("expected rejected payout to be terminal, got %v", err)
	}
}

func TestPayoutCompleteAllocatesOldestFirst(t *testing.T) {
	env := newServiceTestEnv(t, "payout_fifo")
	admin := env.createUser(t, "admin@example.com", constants.UserRoleAdmin)
	affiliate := env.createAffiliate(t, "aff@example.com", "AFFCODE1")
	buyer := env.createUser(t, "buyer@example.com", "")
	base := time.Now().Add(-48 * time.Hour)
	newer := seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "80", base.Add(time.Hour))
	older := seedApprovedCommission(t, env, affiliate.ID, buyer.ID, "100", base)
	recompute(t, env, affiliate.ID)

	payout, err := env.payoutService.Request(affiliate.ID, PayoutRequestInput{Amount: decimal.NewFromInt(150), Method: "upi", Account: "aff@upi"})
	if err != nil {
		t.Fatalf("request payout failed: %v", err)
	}
	if _, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "approve"}); err != nil {
		t.Fatalf("approve payout failed: %v", err)
	}
	completed, err := env.payoutService.Review(admin.ID, payout.ID, PayoutReviewInput{Action: "complete", TransferReference: " UTR123 "})
	if err != nil {
		t.Fatalf("complete payout failed: %v", err)
	}
	if completed.Status != constants.PayoutStatusCompleted || completed.CompletedAt == nil || completed.TransferReference != "UTR123" {
		t.Fatalf("unexpected completed payout: %+v", completed)
	}

	var first, second models.Commission
	env.db.First(&first, older.ID)
	env.db.First(&second, newer.ID)
	if first.Status != constants.CommissionStatusPaid {
		t.Fatalf("expected oldest commission paid, got %s", first.Status)
	}
	assertMoney(t, "oldest paid", first.PaidAmount, "100")
	if second.Status != constants.CommissionStatusApproved {
		t.Fatalf("expected newer commission still approved, got %s", second.Status)
	}
	assertMoney(t, "newer paid", second.PaidAmount, "50")

	var allocations []models.PayoutAllocation
	env.db.Where("payout_id = ?", payout.ID).Order("id asc").Find(&allocations)
	if len(allocations) != 2 || allocations[0].CommissionID != older.ID {
		t.Fatalf("unexpected allocations: %+v", allocations)
	}

	user := env.reloadUser(t, affiliate.ID)
	assertMoney(t, "available after payout", user.AvailableBalance, "30")
	assertMoney(t, "withdrawn", user.TotalWithdrawn, "150")
	assertMoney(t, "earnings", user.TotalEarnings, "180")
}
