package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeAndValidateConfig(t *testing.T) {
	cfg := &Config{KeyID: " rzp_test_1 ", KeySecret: " secret "}
	cfg.Normalize()
	if cfg.KeyID != "rzp_test_1" || cfg.KeySecret != "secret" {
		t.Fatalf("unexpected trimmed keys: %q %q", cfg.KeyID, cfg.KeySecret)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected default api base url: %s", cfg.APIBaseURL)
	}
	if cfg.Timeout != defaultTimeout {
		t.Fatalf("unexpected default timeout: %s", cfg.Timeout)
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate config failed: %v", err)
	}
	if err := ValidateConfig(&Config{KeyID: "k", APIBaseURL: defaultAPIBaseURL}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config invalid, got %v", err)
	}
}

func TestToMinorAmount(t *testing.T) {
	minor, err := ToMinorAmount("1178.82", "INR")
	if err != nil {
		t.Fatalf("to minor failed: %v", err)
	}
	if minor != 117882 {
		t.Fatalf("unexpected minor amount: %d", minor)
	}
	if _, err := ToMinorAmount("10.001", "INR"); err == nil {
		t.Fatalf("expected precision error")
	}
	if _, err := ToMinorAmount("0", "INR"); err == nil {
		t.Fatalf("expected non-positive error")
	}
	if got := FromMinorAmount(117882, "inr"); got != "1178.82" {
		t.Fatalf("unexpected major amount: %s", got)
	}
	if got := FromMinorAmount(500, "JPY"); got != "500" {
		t.Fatalf("unexpected zero-decimal amount: %s", got)
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	cfg := &Config{KeySecret: "key_secret_abc"}
	sig := ComputeSignature(cfg.KeySecret, []byte("order_1|pay_1"))
	if err := VerifyPaymentSignature(cfg, "order_1", "pay_1", sig); err != nil {
		t.Fatalf("verify signature failed: %v", err)
	}
	if err := VerifyPaymentSignature(cfg, "order_1", "pay_2", sig); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	if err := VerifyPaymentSignature(cfg, "order_1", "pay_1", ""); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid for empty signature, got %v", err)
	}
}

func TestVerifyAndParseWebhookPaymentCaptured(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_abc"}
	payload := map[string]interface{}{
		"entity": "event",
		"event":  EventPaymentCaptured,
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       "pay_123",
					"order_id": "order_123",
					"amount":   117882,
					"currency": "INR",
					"status":   "captured",
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	headers := map[string]string{"x-razorpay-signature": ComputeSignature(cfg.WebhookSecret, body)}

	result, err := VerifyAndParseWebhook(cfg, headers, body)
	if err != nil {
		t.Fatalf("verify webhook failed: %v", err)
	}
	if result.Event != EventPaymentCaptured {
		t.Fatalf("unexpected event: %s", result.Event)
	}
	if result.OrderID != "order_123" || result.PaymentID != "pay_123" {
		t.Fatalf("unexpected refs: %s %s", result.OrderID, result.PaymentID)
	}
	if result.Amount != 117882 || result.Currency != "INR" {
		t.Fatalf("unexpected amount: %d %s", result.Amount, result.Currency)
	}
}

func TestVerifyAndParseWebhookOrderPaid(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_abc"}
	payload := map[string]interface{}{
		"event": EventOrderPaid,
		"payload": map[string]interface{}{
			"order": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":          "order_9",
					"amount_paid": 99900,
					"currency":    "inr",
					"receipt":     "HD20260101000000123456",
				},
			},
		},
	}
	body, _ := json.Marshal(payload)
	headers := map[string]string{SignatureHeader: ComputeSignature(cfg.WebhookSecret, body)}

	result, err := VerifyAndParseWebhook(cfg, headers, body)
	if err != nil {
		t.Fatalf("verify webhook failed: %v", err)
	}
	if result.OrderID != "order_9" || result.Amount != 99900 || result.Currency != "INR" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Receipt != "HD20260101000000123456" {
		t.Fatalf("unexpected receipt: %s", result.Receipt)
	}
}

func TestVerifyAndParseWebhookRejectsTamperedBody(t *testing.T) {
	cfg := &Config{WebhookSecret: "whsec_abc"}
	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_1"}}}}`)
	headers := map[string]string{SignatureHeader: ComputeSignature(cfg.WebhookSecret, body)}
	tampered := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_1","order_id":"order_2"}}}}`)

	if _, err := VerifyAndParseWebhook(cfg, headers, tampered); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected signature invalid, got %v", err)
	}
	if _, err := VerifyAndParseWebhook(cfg, map[string]string{}, body); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected missing signature error, got %v", err)
	}
}

func TestCreateOrder(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_1" || pass != "secret" {
			t.Errorf("unexpected basic auth: %s %s", user, pass)
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":117882,"amount_paid":0,"currency":"INR","receipt":"HD1","status":"created"}`))
	}))
	defer server.Close()

	cfg := &Config{KeyID: "rzp_test_1", KeySecret: "secret", APIBaseURL: server.URL}
	cfg.Normalize()
	order, err := CreateOrder(context.Background(), cfg, CreateOrderInput{
		Receipt:  "HD1",
		Amount:   "1178.82",
		Currency: "inr",
		Notes:    map[string]string{"order_no": "HD1"},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.ID != "order_abc" || order.Status != "created" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if amount, _ := gotBody["amount"].(float64); amount != 117882 {
		t.Fatalf("unexpected request amount: %v", gotBody["amount"])
	}
	if gotBody["currency"] != "INR" {
		t.Fatalf("unexpected request currency: %v", gotBody["currency"])
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR"}}`))
	}))
	defer server.Close()

	cfg := &Config{KeyID: "k", KeySecret: "s", APIBaseURL: server.URL}
	cfg.Normalize()
	_, err := CreateOrder(context.Background(), cfg, CreateOrderInput{Receipt: "HD2", Amount: "10", Currency: "INR"})
	if !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected response invalid, got %v", err)
	}
}
