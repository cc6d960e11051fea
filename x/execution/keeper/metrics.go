package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the execution module.
type Metrics struct {
	RequestsAdmitted prometheus.Counter
	ClaimsTotal      *prometheus.CounterVec
	SettlementsTotal *prometheus.CounterVec
	TipsPaid         prometheus.Counter
	CallbacksTotal   *prometheus.CounterVec
	DeploymentsTotal prometheus.Counter
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics returns the process-wide execution metrics. Registration with
// the default registry happens once; every keeper shares the same collectors.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			RequestsAdmitted: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "requests_admitted_total",
				Help:      "Execution requests admitted and escrowed",
			}),
			ClaimsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "claims_total",
				Help:      "Claim attempts by outcome",
			}, []string{"outcome"}),
			SettlementsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "settlements_total",
				Help:      "Request closures by exit code",
			}, []string{"exit_code"}),
			TipsPaid: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "tips_paid_total",
				Help:      "Successful settlements that paid out a tip",
			}),
			CallbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "callbacks_total",
				Help:      "Callback sub-call dispatches by result",
			}, []string{"result"}),
			DeploymentsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "provex",
				Subsystem: "execution",
				Name:      "deployments_total",
				Help:      "Program images deployed",
			}),
		}
	})
	return sharedMetrics
}
