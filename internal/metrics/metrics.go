// Package metrics records ledger activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector is the set of measurements services report.
type Collector interface {
	RecordOperationDuration(op string, d time.Duration)
	RecordOperationResult(op, result string)
	RecordSubmission(kind string)
	RecordBalanceChange(currency string, delta float64)
	RecordExternalRefCollision()
	RecordPartialWrite(op string)
	RecordSweep(scanned, repaired, created int)
	RecordNotificationFailure(event string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}

// NoopCollector is a no-op implementation of Collector
type NoopCollector struct{}

func (NoopCollector) RecordOperationDuration(string, time.Duration) {}
func (NoopCollector) RecordOperationResult(string, string)          {}
func (NoopCollector) RecordSubmission(string)                       {}
func (NoopCollector) RecordBalanceChange(string, float64)           {}
func (NoopCollector) RecordExternalRefCollision()                   {}
func (NoopCollector) RecordPartialWrite(string)                     {}
func (NoopCollector) RecordSweep(int, int, int)                     {}
func (NoopCollector) RecordNotificationFailure(string)              {}
func (NoopCollector) RecordCacheHit(string)                         {}
func (NoopCollector) RecordCacheMiss(string)                        {}

// PrometheusCollector exports Collector measurements.
type PrometheusCollector struct {
	opDuration     *prometheus.HistogramVec
	opResults      *prometheus.CounterVec
	submissions    *prometheus.CounterVec
	balanceDelta   *prometheus.CounterVec
	refCollisions  prometheus.Counter
	partialWrites  *prometheus.CounterVec
	sweepScanned   prometheus.Counter
	sweepRepaired  prometheus.Counter
	sweepCreated   prometheus.Counter
	notifyFailures *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

// NewPrometheusCollector registers the ledger metrics on reg. Pass
// prometheus.DefaultRegisterer to expose them on the default handler.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	f := promauto.With(reg)
	return &PrometheusCollector{
		opDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wallet_operation_duration_seconds",
			Help:    "Duration of wallet ledger operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		}, []string{"op"}),
		opResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_operation_results_total",
			Help: "Outcomes of wallet ledger operations",
		}, []string{"op", "result"}),
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_requests_submitted_total",
			Help: "Deposit and withdrawal requests accepted",
		}, []string{"type"}),
		balanceDelta: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_balance_movement_total",
			Help: "Absolute balance movement applied by approvals",
		}, []string{"currency"}),
		refCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "wallet_external_ref_collisions_total",
			Help: "Deposits flagged because their proof reference was reused",
		}),
		partialWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_partial_write_failures_total",
			Help: "Requests whose ledger entry could not be kept in step",
		}, []string{"op"}),
		sweepScanned: f.NewCounter(prometheus.CounterOpts{
			Name: "wallet_sweep_scanned_total",
			Help: "Divergent requests examined by the reconciliation sweep",
		}),
		sweepRepaired: f.NewCounter(prometheus.CounterOpts{
			Name: "wallet_sweep_repaired_total",
			Help: "Ledger entries repaired by the reconciliation sweep",
		}),
		sweepCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "wallet_sweep_created_total",
			Help: "Missing ledger entries created by the reconciliation sweep",
		}),
		notifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_notification_failures_total",
			Help: "Terminal-state notifications that could not be delivered",
		}, []string{"event"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"cache", "result"}),
	}
}

func (p *PrometheusCollector) RecordOperationDuration(op string, d time.Duration) {
	p.opDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (p *PrometheusCollector) RecordOperationResult(op, result string) {
	p.opResults.WithLabelValues(op, result).Inc()
}

func (p *PrometheusCollector) RecordSubmission(kind string) {
	p.submissions.WithLabelValues(kind).Inc()
}

func (p *PrometheusCollector) RecordBalanceChange(currency string, delta float64) {
	if delta < 0 {
		delta = -delta
	}
	p.balanceDelta.WithLabelValues(currency).Add(delta)
}

func (p *PrometheusCollector) RecordExternalRefCollision() { p.refCollisions.Inc() }

func (p *PrometheusCollector) RecordPartialWrite(op string) {
	p.partialWrites.WithLabelValues(op).Inc()
}

func (p *PrometheusCollector) RecordSweep(scanned, repaired, created int) {
	p.sweepScanned.Add(float64(scanned))
	p.sweepRepaired.Add(float64(repaired))
	p.sweepCreated.Add(float64(created))
}

func (p *PrometheusCollector) RecordNotificationFailure(event string) {
	p.notifyFailures.WithLabelValues(event).Inc()
}

func (p *PrometheusCollector) RecordCacheHit(cache string) {
	p.cacheLookups.WithLabelValues(cache, "hit").Inc()
}

func (p *PrometheusCollector) RecordCacheMiss(cache string) {
	p.cacheLookups.WithLabelValues(cache, "miss").Inc()
}

// OrNoop returns c, or a NoopCollector when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return NoopCollector{}
	}
	return c
}
