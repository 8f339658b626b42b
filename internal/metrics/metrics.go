package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the service's collectors. A private registry keeps tests
// free of duplicate-registration panics.
type Registry struct {
	reg       *prometheus.Registry
	checkIns  *prometheus.CounterVec
	checkOuts *prometheus.CounterVec
	syncItems *prometheus.CounterVec
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_checkins_total",
			Help: "Check-in attempts by result.",
		}, []string{"result"}),
		checkOuts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_checkouts_total",
			Help: "Check-out attempts by result.",
		}, []string{"result"}),
		syncItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_sync_items_total",
			Help: "Bulk sync items by result.",
		}, []string{"result"}),
	}
	r.reg.MustRegister(
		r.checkIns,
		r.checkOuts,
		r.syncItems,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return r
}

// Gatherer exposes the registry to promhttp.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// The recorders are nil-safe so usecases can run without metrics.

func (r *Registry) CheckIn(result string) {
	if r != nil {
		inc(r.checkIns, result)
	}
}

func (r *Registry) CheckOut(result string) {
	if r != nil {
		inc(r.checkOuts, result)
	}
}

func (r *Registry) SyncItem(result string) {
	if r != nil {
		inc(r.syncItems, result)
	}
}

func inc(vec *prometheus.CounterVec, result string) {
	vec.WithLabelValues(strings.ToLower(result)).Inc()
}
