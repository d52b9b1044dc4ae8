package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SaveMetrics содержит метрики протокола сохранения и загрузки связей заказа.
type SaveMetrics struct {
	// Счётчики операций
	saves   *prometheus.CounterVec
	deletes *prometheus.CounterVec

	// Гистограмма времени сохранения
	saveDuration *prometheus.HistogramVec

	// Загрузки связанных сущностей заказа
	associationLoads *prometheus.CounterVec

	outboxEnqueued prometheus.Counter

	savesInFlight prometheus.Gauge
}

// NewSaveMetrics создаёт метрики в реестре по умолчанию.
func NewSaveMetrics() *SaveMetrics {
	return NewSaveMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewSaveMetricsWithRegisterer создаёт метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewSaveMetricsWithRegisterer(registerer prometheus.Registerer) *SaveMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &SaveMetrics{
		saves: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_entity_saves_total",
			Help: "Total number of entity save attempts by outcome",
		}, []string{"entity", "outcome"}),
		deletes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_entity_deletes_total",
			Help: "Total number of entities deleted",
		}, []string{"entity"}),
		saveDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "commerce_entity_save_duration_seconds",
			Help:    "Duration of entity saves in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"entity"}),
		associationLoads: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_order_association_loads_total",
			Help: "Total number of lazy order association loads",
		}, []string{"association", "result"}),
		outboxEnqueued: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_outbox_enqueued_total",
			Help: "Total number of entity events written to the outbox",
		}),
		savesInFlight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "commerce_entity_saves_in_flight",
			Help: "Number of entity saves currently in progress",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordSaveStarted увеличивает количество сохранений в процессе.
func (m *SaveMetrics) RecordSaveStarted() {
	m.savesInFlight.Inc()
}

// RecordSave фиксирует завершённое сохранение и его длительность.
func (m *SaveMetrics) RecordSave(entity, outcome string, duration time.Duration) {
	m.savesInFlight.Dec()
	m.saves.WithLabelValues(entity, outcome).Inc()
	m.saveDuration.WithLabelValues(entity).Observe(duration.Seconds())
}

// RecordDelete увеличивает счётчик удалений сущности.
func (m *SaveMetrics) RecordDelete(entity string) {
	m.deletes.WithLabelValues(entity).Inc()
}

// RecordAssociationLoad фиксирует обращение к загрузчику связи заказа.
func (m *SaveMetrics) RecordAssociationLoad(association string, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	m.associationLoads.WithLabelValues(association, result).Inc()
}

// RecordOutboxEnqueued увеличивает счётчик событий, записанных в outbox.
func (m *SaveMetrics) RecordOutboxEnqueued() {
	m.outboxEnqueued.Inc()
}
