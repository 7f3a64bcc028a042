// Package metrics exposes Prometheus collectors for the controller. All
// methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greenhouse"

// Results used as label values.
const (
	ResultHit       = "hit"
	ResultMiss      = "miss"
	ResultError     = "error"
	ResultCompleted = "completed"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
	ResultOK        = "ok"
)

type Metrics struct {
	registry *prometheus.Registry

	cacheReads       *prometheus.CounterVec
	pumpRuns         *prometheus.CounterVec
	wateredML        *prometheus.CounterVec
	pollTicks        *prometheus.CounterVec
	recordsProcessed *prometheus.CounterVec
	recordsDropped   *prometheus.CounterVec
	sinkSends        *prometheus.CounterVec
}

// New builds a private registry with the Go and process collectors plus the
// controller's own series.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_cache_reads_total",
			Help:      "Sensor cache reads by result (hit, miss, error).",
		}, []string{"sensor", "result"}),
		pumpRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_runs_total",
			Help:      "Pump actuation attempts by result.",
		}, []string{"pump", "result"}),
		wateredML: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pump_water_ml_total",
			Help:      "Water delivered per pump, in millilitres.",
		}, []string{"pump"}),
		pollTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poller_ticks_total",
			Help:      "Poller ticks by result.",
		}, []string{"poller", "result"}),
		recordsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_stored_total",
			Help:      "Records written to storage by kind.",
		}, []string{"kind"}),
		recordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Records that failed to store, by kind.",
		}, []string{"kind"}),
		sinkSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_sends_total",
			Help:      "Records forwarded to external sinks by result.",
		}, []string{"sink", "result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheReads,
		m.pumpRuns,
		m.wateredML,
		m.pollTicks,
		m.recordsProcessed,
		m.recordsDropped,
		m.sinkSends,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RegisterQueueDepth exports the record queue length as a gauge.
func (m *Metrics) RegisterQueueDepth(depth func() int) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "record_queue_depth",
		Help:      "Records waiting to be stored.",
	}, func() float64 { return float64(depth()) }))
}

func (m *Metrics) CacheRead(sensor, result string) {
	if m == nil {
		return
	}
	m.cacheReads.WithLabelValues(sensor, result).Inc()
}

func (m *Metrics) PumpRun(pumpID int, result string) {
	if m == nil {
		return
	}
	m.pumpRuns.WithLabelValues(strconv.Itoa(pumpID), result).Inc()
}

func (m *Metrics) Watered(pumpID int, ml float64) {
	if m == nil || ml <= 0 {
		return
	}
	m.wateredML.WithLabelValues(strconv.Itoa(pumpID)).Add(ml)
}

func (m *Metrics) PollTick(poller, result string) {
	if m == nil {
		return
	}
	m.pollTicks.WithLabelValues(poller, result).Inc()
}

func (m *Metrics) RecordStored(kind string) {
	if m == nil {
		return
	}
	m.recordsProcessed.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordDropped(kind string) {
	if m == nil {
		return
	}
	m.recordsDropped.WithLabelValues(kind).Inc()
}

func (m *Metrics) SinkSend(sink, result string) {
	if m == nil {
		return
	}
	m.sinkSends.WithLabelValues(sink, result).Inc()
}
