package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты попытки публикации из outbox.
const (
	PublishSent       = "sent"
	PublishRetryError = "retry_error"
	PublishFailed     = "failed"
	PublishDLQFailed  = "dlq_failed"
)

// Результаты прогона очистки outbox.
const (
	CleanupOK    = "ok"
	CleanupError = "error"
)

// OutboxMetrics описывает доставку событий из transactional outbox.
type OutboxMetrics struct {
	publishAttempts *prometheus.CounterVec
	pending         prometheus.Gauge
	oldestAge       prometheus.Gauge
	cleanupRuns     *prometheus.CounterVec
	purged          prometheus.Counter
	lastPurged      prometheus.Gauge
}

// NewOutboxMetricsWithRegisterer создаёт метрики outbox в переданном реестре.
func NewOutboxMetricsWithRegisterer(registerer prometheus.Registerer) *OutboxMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OutboxMetrics{
		publishAttempts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_outbox_publish_attempts_total",
			Help: "Total number of outbox publish attempts grouped by result",
		}, []string{"result"}),
		pending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "commerce_outbox_pending_records",
			Help: "Current number of pending records in transactional outbox",
		}),
		oldestAge: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "commerce_outbox_oldest_pending_age_seconds",
			Help: "Age in seconds of the oldest pending outbox record",
		}),
		cleanupRuns: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_outbox_cleanup_runs_total",
			Help: "Total number of outbox cleanup runs grouped by result",
		}, []string{"result"}),
		purged: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_outbox_cleanup_deleted_total",
			Help: "Total number of processed outbox records deleted by cleanup",
		}),
		lastPurged: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "commerce_outbox_cleanup_last_deleted",
			Help: "Number of records deleted during the last cleanup run",
		}),
	}
}

// RecordPublish увеличивает счётчик попыток с указанным результатом.
func (m *OutboxMetrics) RecordPublish(result string) {
	m.publishAttempts.WithLabelValues(result).Inc()
}

// SetBacklog обновляет размер backlog и возраст самого старого сообщения.
func (m *OutboxMetrics) SetBacklog(pending int, oldest time.Time, now time.Time) {
	m.pending.Set(float64(pending))
	if pending == 0 || oldest.IsZero() {
		m.oldestAge.Set(0)
		return
	}
	age := now.Sub(oldest).Seconds()
	if age < 0 {
		age = 0
	}
	m.oldestAge.Set(age)
}

// RecordCleanup фиксирует результат прогона очистки. deleted учитывается только при CleanupOK.
func (m *OutboxMetrics) RecordCleanup(result string, deleted int) {
	m.cleanupRuns.WithLabelValues(result).Inc()
	if result != CleanupOK {
		return
	}
	m.lastPurged.Set(float64(deleted))
	if deleted > 0 {
		m.purged.Add(float64(deleted))
	}
}
