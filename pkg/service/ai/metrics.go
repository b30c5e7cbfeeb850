package ai

import (
	"errors"

	"github.com/anzhiyu-c/ibbs/pkg/constant"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	agentRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ibbs",
		Subsystem: "agent",
		Name:      "requests_total",
		Help:      "AI 代理调用次数，按操作和结果分类",
	}, []string{"operation", "outcome"})

	agentDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ibbs",
		Subsystem: "agent",
		Name:      "request_duration_seconds",
		Help:      "AI 代理调用耗时",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"operation"})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, constant.ErrAgentDisabled):
		return "disabled"
	default:
		return "error"
	}
}
