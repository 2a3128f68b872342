package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		paymentSignatureFailures,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_payments_total",
			Help: "Payment attempts by status (created/paid/failed/refund_required).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_payments_revenue_minor_total",
			Help: "Captured revenue in minor currency units, labeled by currency.",
		},
		[]string{"currency"},
	)

	paymentSignatureFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_payment_signature_failures_total",
			Help: "Rejected gateway signatures by source (checkout/webhook).",
		},
		[]string{"source"},
	)
)

// IncPayment 支付流水状态计数
func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

// AddPaymentRevenue 累加已入账金额（最小货币单位）
func AddPaymentRevenue(currency string, minorUnits int64) {
	if minorUnits <= 0 {
		return
	}
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(minorUnits))
}

// IncSignatureFailure 签名校验失败计数
func IncSignatureFailure(source string) {
	paymentSignatureFailures.WithLabelValues(norm(source)).Inc()
}
