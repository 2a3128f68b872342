package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		commissionsCreated,
		commissionsApproved,
		payoutsTotal,
		subscriptionsActivated,
	)
}

var (
	commissionsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_commissions_created_total",
			Help: "Commission rows created, labeled by referral level and order type.",
		},
		[]string{"level", "order_type"},
	)

	commissionsApproved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hostdesk_commissions_auto_approved_total",
			Help: "Pending commissions approved by the hold-period sweep.",
		},
	)

	payoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_payouts_total",
			Help: "Payout state transitions by resulting status.",
		},
		[]string{"status"},
	)

	subscriptionsActivated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostdesk_affiliate_activations_total",
			Help: "Affiliate subscription activations by source.",
		},
		[]string{"source"},
	)
)

// IncCommissionCreated 佣金生成计数
func IncCommissionCreated(level int, orderType string) {
	commissionsCreated.WithLabelValues(strconv.Itoa(level), norm(orderType)).Inc()
}

// AddCommissionsApproved 自动确认佣金计数
func AddCommissionsApproved(count int64) {
	if count <= 0 {
		return
	}
	commissionsApproved.Add(float64(count))
}

// IncPayout 提现状态流转计数
func IncPayout(status string) {
	payoutsTotal.WithLabelValues(norm(status)).Inc()
}

// IncAffiliateActivation 推广资格开通计数
func IncAffiliateActivation(source string) {
	subscriptionsActivated.WithLabelValues(norm(source)).Inc()
}
