package metrics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register 由各指标文件的 init 调用，登记待注册的 collector
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister 将全部 collector 注册到默认 registry（只执行一次）
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	MustRegister()
	return promhttp.Handler()
}

func norm(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
