// Package metrics holds the Prometheus collectors of the scheduler.
package metrics

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор коллекторов сервиса
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	dbQueries       *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbOpenConns     prometheus.Gauge
	dbInUseConns    prometheus.Gauge
	dbIdleConns     prometheus.Gauge
	dbWaitCount     prometheus.Gauge

	assignments *prometheus.CounterVec
	transitions *prometheus.CounterVec
	splits      prometheus.Counter
	merges      prometheus.Counter
	deletes     prometheus.Counter
	rollbacks   prometheus.Counter
	corrections prometheus.Counter

	cacheLookups *prometheus.CounterVec
	eventsSent   *prometheus.CounterVec
}

// New создает метрики и регистрирует их в реестре Prometheus по умолчанию
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry создает метрики в указанном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request duration",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),

		dbQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: labels,
		}, []string{"operation", "result"}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query duration",
			ConstLabels: labels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		dbOpenConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_open_connections", Help: "Open database connections", ConstLabels: labels,
		}),
		dbInUseConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_in_use_connections", Help: "Database connections in use", ConstLabels: labels,
		}),
		dbIdleConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_idle_connections", Help: "Idle database connections", ConstLabels: labels,
		}),
		dbWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "db_wait_count", Help: "Total number of connections waited for", ConstLabels: labels,
		}),

		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_assignments_total",
			Help:        "Assignment attempts by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scheduler_transitions_total",
			Help:        "Applied lifecycle events",
			ConstLabels: labels,
		}, []string{"event"}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_splits_total", Help: "Appointments split", ConstLabels: labels,
		}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_merges_total", Help: "Children merged back into parents", ConstLabels: labels,
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_deletes_total", Help: "Appointments deleted", ConstLabels: labels,
		}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_rollbacks_total", Help: "Optimistic changes rolled back", ConstLabels: labels,
		}),
		corrections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_corrections_total", Help: "Optimistic changes corrected by the store", ConstLabels: labels,
		}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "cache_lookups_total",
			Help:        "Cache lookups by result",
			ConstLabels: labels,
		}, []string{"cache", "result"}),
		eventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "events_published_total",
			Help:        "Events forwarded to external sinks",
			ConstLabels: labels,
		}, []string{"sink", "type", "result"}),
	}

	reg.MustRegister(
		m.httpRequests, m.httpDuration,
		m.dbQueries, m.dbQueryDuration, m.dbOpenConns, m.dbInUseConns, m.dbIdleConns, m.dbWaitCount,
		m.assignments, m.transitions, m.splits, m.merges, m.deletes, m.rollbacks, m.corrections,
		m.cacheLookups, m.eventsSent,
	)
	return m
}

// Все методы безопасны для nil *Metrics.

// RecordHTTPRequest учитывает обработанный HTTP запрос
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery учитывает запрос к БД
func (m *Metrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil && err != sql.ErrNoRows {
		result = "error"
	}
	m.dbQueries.WithLabelValues(operation, result).Inc()
	m.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDBPoolStats обновляет показатели пула соединений
func (m *Metrics) SetDBPoolStats(stats sql.DBStats) {
	if m == nil {
		return
	}
	m.dbOpenConns.Set(float64(stats.OpenConnections))
	m.dbInUseConns.Set(float64(stats.InUse))
	m.dbIdleConns.Set(float64(stats.Idle))
	m.dbWaitCount.Set(float64(stats.WaitCount))
}

// IncAssignment учитывает попытку назначения: ok, overbooked, capacity_exceeded
func (m *Metrics) IncAssignment(outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(outcome).Inc()
}

// IncTransition учитывает применённое событие жизненного цикла
func (m *Metrics) IncTransition(event string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(event).Inc()
}

func (m *Metrics) IncSplits() {
	if m != nil {
		m.splits.Inc()
	}
}

func (m *Metrics) IncMerges() {
	if m != nil {
		m.merges.Inc()
	}
}

func (m *Metrics) IncDeletes() {
	if m != nil {
		m.deletes.Inc()
	}
}

func (m *Metrics) IncRollbacks() {
	if m != nil {
		m.rollbacks.Inc()
	}
}

func (m *Metrics) IncCorrections() {
	if m != nil {
		m.corrections.Inc()
	}
}

// IncCacheLookup учитывает попадание или промах кэша
func (m *Metrics) IncCacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// IncEventPublished учитывает отправку события во внешний приёмник
func (m *Metrics) IncEventPublished(sink, eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsSent.WithLabelValues(sink, eventType, result).Inc()
}
