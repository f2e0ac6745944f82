package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the sync-loop counters behind one prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	Pulls        prometheus.Counter
	PullFailures prometheus.Counter
	Pushes       prometheus.Counter
	PushFailures prometheus.Counter
	PushDropped  prometheus.Counter
	MergeChanged prometheus.Counter
	OrdersTotal  prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	pulls := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_pulls_total"})
	pullFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_pull_failures_total"})
	pushes := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_pushes_total"})
	pushFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_push_failures_total"})
	pushDropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_push_dropped_total"})
	mergeChanged := prometheus.NewCounter(prometheus.CounterOpts{Name: "kavarna_sync_merge_changed_total"})
	ordersTotal := prometheus.NewGauge(prometheus.GaugeOpts{Name: "kavarna_orders_total"})

	r.MustRegister(pulls, pullFailures, pushes, pushFailures, pushDropped, mergeChanged, ordersTotal)
	return &Registry{
		reg:          r,
		Pulls:        pulls,
		PullFailures: pullFailures,
		Pushes:       pushes,
		PushFailures: pushFailures,
		PushDropped:  pushDropped,
		MergeChanged: mergeChanged,
		OrdersTotal:  ordersTotal,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
