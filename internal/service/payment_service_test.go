package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/payment/razorpay"
	"github.com/hostdesk/internal/repository"
)

func createServerOrder(t *testing.T, env *serviceTestEnv, userID uint, plan *models.Plan, cycle string) *models.Order {
	t.Helper()
	order, err := env.orderService.CreateServerOrder(userID, CreateServerOrderInput{
		PlanID:       plan.ID,
		BillingCycle: cycle,
		Hostname:     "web-01.example.com",
		Region:       "in-mum-1",
		OSImage:      "ubuntu-24.04",
	})
	if err != nil {
		t.Fatalf("create server order failed: %v", err)
	}
	return order
}

func webhookBody(t *testing.T, event, gatewayOrderID, paymentID string, amount int64) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": event,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":                paymentID,
					"order_id":          gatewayOrderID,
					"status":            "captured",
					"amount":            amount,
					"currency":          "INR",
					"error_description": "card declined by issuer",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal webhook failed: %v", err)
	}
	return body
}

func signedHeaders(body []byte) map[string]string {
	return map[string]string{razorpay.SignatureHeader: razorpay.ComputeSignature(testRazorpayWebhookSecret, body)}
}

func TestServerPurchaseEndToEnd(t *testing.T) {
	env := newServiceTestEnv(t, "payment_e2e")
	fx := newReferralFixture(t, env)
	plan := env.createPlan(t, "vps-2", "1000")
	order := createServerOrder(t, env, fx.buyer.ID, plan, constants.BillingCycleMonthly)

	assertMoney(t, "subtotal", order.Subtotal, "1000")
	assertMoney(t, "tax", order.TaxAmount, "180")
	assertMoney(t, "total", order.TotalAmount, "1180")
	if order.Invoice == nil || order.Invoice.Status != constants.InvoiceStatusUnpaid {
		t.Fatalf("expected unpaid invoice issued with the order")
	}

	first, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: fx.buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if first.AmountMinor != 118000 || first.KeyID != testRazorpayKeyID || first.Reused {
		t.Fatalf("unexpected create result: %+v", first)
	}
	again, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: fx.buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment again failed: %v", err)
	}
	if !again.Reused || again.GatewayOrderID != first.GatewayOrderID {
		t.Fatalf("expected created payment reused, got %+v", again)
	}

	if _, err := env.paymentService.VerifyPayment(fx.buyer.ID, VerifyPaymentInput{
		GatewayOrderID:   first.GatewayOrderID,
		GatewayPaymentID: "pay_forged",
		Signature:        "deadbeef",
	}); !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected ErrPaymentSignatureInvalid, got %v", err)
	}

	payment := env.payOrder(t, order)
	if payment.Status != constants.PaymentStatusPaid || !payment.CommissionDistributed {
		t.Fatalf("unexpected payment state: %+v", payment)
	}

	stored := env.reloadOrder(t, order.ID)
	if stored.Status != constants.OrderStatusCompleted || stored.PaidAt == nil || stored.CompletedAt == nil {
		t.Fatalf("expected completed order, got %+v", stored)
	}
	invoice, err := env.invoiceService.GetForUser(fx.buyer.ID, order.Invoice.ID)
	if err != nil {
		t.Fatalf("get invoice failed: %v", err)
	}
	if invoice.Status != constants.InvoiceStatusPaid || invoice.PaidAt == nil {
		t.Fatalf("expected paid invoice, got %+v", invoice)
	}

	servers, total, err := env.serverService.ListForUser(fx.buyer.ID, "", 1, 20)
	if err != nil {
		t.Fatalf("list servers failed: %v", err)
	}
	if total != 1 || servers[0].Hostname != "web-01.example.com" || servers[0].Status != constants.ServerStatusProvisioning {
		t.Fatalf("unexpected servers: %+v", servers)
	}

	rows := env.commissionsForOrder(t, order.ID)
	if len(rows) != 3 {
		t.Fatalf("expected 3 commissions, got %d", len(rows))
	}
	assertMoney(t, "level 1", rows[0].Amount, "100")
	assertMoney(t, "level 2", rows[1].Amount, "50")
	assertMoney(t, "level 3", rows[2].Amount, "20")

	var converted int64
	env.db.Model(&models.Referral{}).Where("referred_id = ? AND converted = ?", fx.buyer.ID, true).Count(&converted)
	if converted != 3 {
		t.Fatalf("expected 3 converted referral edges, got %d", converted)
	}

	sub, err := env.affiliateService.GetSubscription(fx.buyer.ID)
	if err != nil || sub == nil {
		t.Fatalf("expected free affiliate subscription, err=%v", err)
	}
	if sub.IsLifetime || sub.ActivationSource != constants.AffiliateSourceServerPurchase {
		t.Fatalf("unexpected free subscription: %+v", sub)
	}

	signature := razorpay.ComputeSignature(testRazorpayKeySecret, []byte(payment.GatewayOrderID+"|"+payment.GatewayPaymentID))
	repeated, err := env.paymentService.VerifyPayment(fx.buyer.ID, VerifyPaymentInput{
		GatewayOrderID:   payment.GatewayOrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		Signature:        signature,
	})
	if err != nil {
		t.Fatalf("repeat verify failed: %v", err)
	}
	if repeated.ID != payment.ID {
		t.Fatalf("expected same payment on repeat")
	}
	if rows := env.commissionsForOrder(t, order.ID); len(rows) != 3 {
		t.Fatalf("expected commissions unchanged on repeat, got %d", len(rows))
	}
	if _, total, _ := env.serverService.ListForUser(fx.buyer.ID, "", 1, 20); total != 1 {
		t.Fatalf("expected a single server after repeat, got %d", total)
	}
}

func TestAffiliateJoiningFeeActivatesLifetime(t *testing.T) {
	env := newServiceTestEnv(t, "payment_affiliate")
	fx := newReferralFixture(t, env)

	order, err := env.orderService.CreateAffiliateOrder(fx.buyer.ID)
	if err != nil {
		t.Fatalf("create affiliate order failed: %v", err)
	}
	assertMoney(t, "fee subtotal", order.Subtotal, "999")
	assertMoney(t, "fee total", order.TotalAmount, "1178.82")

	reused, err := env.orderService.CreateAffiliateOrder(fx.buyer.ID)
	if err != nil {
		t.Fatalf("create affiliate order again failed: %v", err)
	}
	if reused.ID != order.ID {
		t.Fatalf("expected pending affiliate order reused")
	}

	env.payOrder(t, order)
	sub, err := env.affiliateService.GetSubscription(fx.buyer.ID)
	if err != nil || sub == nil {
		t.Fatalf("expected subscription, err=%v", err)
	}
	if !sub.IsLifetime || !sub.IsActive || sub.ActivationSource != constants.AffiliateSourceJoiningFee {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	rows := env.commissionsForOrder(t, order.ID)
	if len(rows) != 3 {
		t.Fatalf("expected 3 commissions, got %d", len(rows))
	}
	assertMoney(t, "subscription level 1", rows[0].Amount, "199.8")

	if _, err := env.orderService.CreateAffiliateOrder(fx.buyer.ID); !errors.Is(err, ErrAffiliateAlreadyOn) {
		t.Fatalf("expected ErrAffiliateAlreadyOn, got %v", err)
	}
}

func TestCreatePaymentRejectsExpiredOrForeignOrder(t *testing.T) {
	env := newServiceTestEnv(t, "payment_reject")
	owner := env.createUser(t, "owner@example.com", "")
	other := env.createUser(t, "other@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	order := createServerOrder(t, env, owner.ID, plan, constants.BillingCycleQuarterly)

	if _, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: other.ID, OrderID: order.ID}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
	past := time.Now().Add(-time.Minute)
	env.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("expires_at", past)
	if _, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: owner.ID, OrderID: order.ID}); !errors.Is(err, ErrOrderExpired) {
		t.Fatalf("expected ErrOrderExpired, got %v", err)
	}
}

func TestWebhookCapturedFinalizesPayment(t *testing.T) {
	env := newServiceTestEnv(t, "payment_webhook")
	buyer := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	order := createServerOrder(t, env, buyer.ID, plan, constants.BillingCycleMonthly)
	created, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	tampered := webhookBody(t, razorpay.EventPaymentCaptured, created.GatewayOrderID, "pay_hook1", created.AmountMinor)
	if _, err := env.paymentService.HandleRazorpayWebhook(map[string]string{razorpay.SignatureHeader: "00"}, tampered); !errors.Is(err, ErrPaymentSignatureInvalid) {
		t.Fatalf("expected ErrPaymentSignatureInvalid, got %v", err)
	}

	short := webhookBody(t, razorpay.EventPaymentCaptured, created.GatewayOrderID, "pay_hook1", created.AmountMinor-100)
	if _, err := env.paymentService.HandleRazorpayWebhook(signedHeaders(short), short); !errors.Is(err, ErrPaymentAmountMismatch) {
		t.Fatalf("expected ErrPaymentAmountMismatch, got %v", err)
	}
	if env.reloadOrder(t, order.ID).Status != constants.OrderStatusPending {
		t.Fatalf("expected order untouched after mismatch")
	}

	body := webhookBody(t, razorpay.EventPaymentCaptured, created.GatewayOrderID, "pay_hook1", created.AmountMinor)
	outcome, err := env.paymentService.HandleRazorpayWebhook(signedHeaders(body), body)
	if err != nil {
		t.Fatalf("handle webhook failed: %v", err)
	}
	if !outcome.Handled || outcome.Payment.Status != constants.PaymentStatusPaid || outcome.Payment.GatewayPaymentID != "pay_hook1" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if env.reloadOrder(t, order.ID).Status != constants.OrderStatusCompleted {
		t.Fatalf("expected completed order")
	}

	outcome, err = env.paymentService.HandleRazorpayWebhook(signedHeaders(body), body)
	if err != nil || !outcome.Handled {
		t.Fatalf("expected replayed webhook to be idempotent, err=%v", err)
	}

	ignored := webhookBody(t, "refund.created", created.GatewayOrderID, "pay_hook1", created.AmountMinor)
	outcome, err = env.paymentService.HandleRazorpayWebhook(signedHeaders(ignored), ignored)
	if err != nil || outcome.Handled {
		t.Fatalf("expected unknown event ignored, outcome=%+v err=%v", outcome, err)
	}
}

func TestWebhookFailedMarksAttempt(t *testing.T) {
	env := newServiceTestEnv(t, "payment_failed")
	buyer := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	order := createServerOrder(t, env, buyer.ID, plan, constants.BillingCycleMonthly)
	created, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	body := webhookBody(t, razorpay.EventPaymentFailed, created.GatewayOrderID, "pay_fail1", created.AmountMinor)
	outcome, err := env.paymentService.HandleRazorpayWebhook(signedHeaders(body), body)
	if err != nil {
		t.Fatalf("handle failed webhook failed: %v", err)
	}
	if outcome.Payment.Status != constants.PaymentStatusFailed || outcome.Payment.FailureReason != "card declined by issuer" {
		t.Fatalf("unexpected failed payment: %+v", outcome.Payment)
	}
	if env.reloadOrder(t, order.ID).Status != constants.OrderStatusPending {
		t.Fatalf("expected order still pending after failed attempt")
	}

	retry, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("retry payment failed: %v", err)
	}
	if retry.Reused || retry.GatewayOrderID == created.GatewayOrderID {
		t.Fatalf("expected a fresh gateway order after failure")
	}
}

func TestFinalizeRejectsCancelledOrder(t *testing.T) {
	env := newServiceTestEnv(t, "payment_cancelled")
	buyer := env.createUser(t, "buyer@example.com", "")
	plan := env.createPlan(t, "vps-1", "500")
	order := createServerOrder(t, env, buyer.ID, plan, constants.BillingCycleMonthly)
	created, err := env.paymentService.CreatePayment(CreatePaymentInput{UserID: buyer.ID, OrderID: order.ID})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if _, err := env.orderService.CancelForUser(buyer.ID, order.ID); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}

	_, err = env.paymentService.Finalize(FinalizePaymentInput{GatewayOrderID: created.GatewayOrderID, GatewayPaymentID: "pay_late", Source: "webhook"})
	if !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
	stored, err := env.paymentService.GetForAdmin(created.Payment.ID)
	if err != nil {
		t.Fatalf("get payment failed: %v", err)
	}
	if stored.Status != constants.PaymentStatusRefundRequired {
		t.Fatalf("expected payment flagged refund_required, got %s", stored.Status)
	}
	if stored.GatewayPaymentID != "pay_late" || !strings.Contains(stored.FailureReason, constants.OrderStatusCancelled) {
		t.Fatalf("unexpected refund record: payment_id=%s reason=%q", stored.GatewayPaymentID, stored.FailureReason)
	}
	if stored.PaidAt != nil {
		t.Fatalf("expected refund_required payment to stay unpaid")
	}

	// 重复回调保持待退款状态
	if _, err := env.paymentService.Finalize(FinalizePaymentInput{GatewayOrderID: created.GatewayOrderID, GatewayPaymentID: "pay_late", Source: "webhook"}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid on retry, got %v", err)
	}
	rows, total, err := env.paymentService.ListAdmin(repository.PaymentListFilter{Page: 1, PageSize: 20, Status: constants.PaymentStatusRefundRequired})
	if err != nil {
		t.Fatalf("list payments failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != created.Payment.ID {
		t.Fatalf("expected refund_required payment listed, got total=%d", total)
	}
	if _, err := env.paymentService.MarkFailed(created.GatewayOrderID, "pay_late", "late failure"); err != nil {
		t.Fatalf("mark failed returned error: %v", err)
	}
	reloaded, err := env.paymentService.GetForAdmin(created.Payment.ID)
	if err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if reloaded.Status != constants.PaymentStatusRefundRequired {
		t.Fatalf("expected failure event to keep refund_required, got %s", reloaded.Status)
	}
	var cancelled models.Order
	if err := env.db.First(&cancelled, order.ID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected order to stay cancelled, got %s", cancelled.Status)
	}
	if _, err := env.paymentService.Finalize(FinalizePaymentInput{GatewayOrderID: "order_missing"}); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}
