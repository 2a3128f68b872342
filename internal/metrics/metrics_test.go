package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesRegisteredCollectors(t *testing.T) {
	IncPayment("paid")
	AddPaymentRevenue("INR", 11800)
	IncCommissionCreated(1, "server_purchase")
	IncPayout("completed")
	ObserveHTTP(http.MethodGet, "/health", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{
		`hostdesk_payments_total{status="paid"}`,
		`hostdesk_payments_revenue_minor_total{currency="inr"}`,
		`hostdesk_commissions_created_total{level="1",order_type="server_purchase"}`,
		`hostdesk_payouts_total{status="completed"}`,
		`hostdesk_http_requests_total{method="GET",route="/health",status="200"}`,
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected metrics output to contain %s", name)
		}
	}
}

func TestNormDefaultsToUnknown(t *testing.T) {
	if got := norm("  "); got != "unknown" {
		t.Fatalf("expected unknown, got %q", got)
	}
	if got := norm(" Paid "); got != "paid" {
		t.Fatalf("expected paid, got %q", got)
	}
}
