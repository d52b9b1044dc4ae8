package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/currency"
	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/gateway"
	healthcheck "github.com/vladislavdragonenkov/commerce/internal/health"
	"github.com/vladislavdragonenkov/commerce/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/service/address"
	"github.com/vladislavdragonenkov/commerce/internal/service/order"
	"github.com/vladislavdragonenkov/commerce/internal/service/outbox"
	"github.com/vladislavdragonenkov/commerce/internal/service/paymentmethod"
	"github.com/vladislavdragonenkov/commerce/internal/validation"
	"github.com/vladislavdragonenkov/commerce/internal/version"
)

const (
	entityAddress       = "address"
	entityPaymentMethod = "payment_method"
)

// App — собранные сервисы поверх выбранного хранилища.
type App struct {
	Addresses      *address.Service
	PaymentMethods *paymentmethod.Service
	Orders         *order.Service
	Geo            domain.GeoLookup
	Outbox         domain.OutboxRepository

	outboxPurger   domain.OutboxPurger
	storageChecker healthcheck.Checker
	deps           runtimeDependencies
}

// Build поднимает хранилище и собирает сервисы. Метрики регистрируются в registerer.
func Build(ctx context.Context, cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*App, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	saveMetrics := metrics.NewSaveMetricsWithRegisterer(registerer)
	validator := validation.New()

	addresses := address.NewService(deps.addresses,
		address.WithLogger(logger.WithField("layer", "address")),
		address.WithMetrics(saveMetrics),
		address.WithValidator(validator),
		address.WithHooks(outbox.NotifyOnSave[*domain.Address](deps.outboxRepo, entityAddress, nil, saveMetrics, logger)),
	)

	paymentMethods := paymentmethod.NewService(deps.paymentMethods,
		paymentmethod.WithLogger(logger.WithField("layer", "payment_method")),
		paymentmethod.WithMetrics(saveMetrics),
		paymentmethod.WithValidator(validator),
		paymentmethod.WithRegistry(gateway.DefaultRegistry(validator)),
		paymentmethod.WithHooks(outbox.NotifyOnSave[*domain.PaymentMethod](deps.outboxRepo, entityPaymentMethod, outbox.PaymentMethodSummary, saveMetrics, logger)),
	)

	resolver := order.NewResolver(order.Loaders{
		LineItems:       deps.lineItems,
		Adjustments:     deps.adjustments,
		Addresses:       deps.addresses,
		Customers:       deps.lookups,
		PaymentMethods:  deps.paymentMethods,
		ShippingMethods: deps.lookups,
	}, saveMetrics)

	orders := order.NewService(deps.orders, resolver,
		order.WithLogger(logger.WithField("layer", "order")),
		order.WithMetrics(saveMetrics),
		order.WithCurrencyPrecision(currency.NewISOPrecision(2)),
		order.WithDefaultCurrency(cfg.DefaultCurrency),
		order.WithCleaners(deps.cleaners...),
	)

	return &App{
		Addresses:      addresses,
		PaymentMethods: paymentMethods,
		Orders:         orders,
		Geo:            deps.lookups,
		Outbox:         deps.outboxRepo,
		outboxPurger:   deps.outboxRepo,
		storageChecker: deps.storageChecker,
		deps:           deps,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.deps.close()
}

// Run запускает сервис: outbox worker, HTTP с метриками и health checks.
// Возвращает ctx.Err() после штатной остановки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	application, err := Build(ctx, cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := application.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	// Kafka опциональна: без брокеров события outbox только логируются.
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaClientID, logger)
	if err != nil {
		kafkaProducer = nil
	}
	defer closeKafka(kafkaProducer, logger)

	var publisher, dlqPublisher domain.OutboxPublisher
	if kafkaProducer != nil {
		publisher = kafka.NewOutboxPublisher(kafkaProducer, cfg.KafkaTopic)
		dlqPublisher = kafka.NewOutboxPublisher(kafkaProducer, cfg.KafkaDLQTopic)
	} else {
		publisher = logPublisher{logger: logger.WithField("layer", "outbox-log")}
	}

	outboxMetrics := metrics.NewOutboxMetricsWithRegisterer(prometheus.DefaultRegisterer)
	workerOpts := []outbox.Option{
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(outboxMetrics),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if dlqPublisher != nil {
		workerOpts = append(workerOpts, outbox.WithDLQPublisher(dlqPublisher))
	}
	worker := outbox.NewWorker(application.Outbox, publisher, workerOpts...)

	cleaner := outbox.NewCleanupWorker(application.outboxPurger,
		outbox.WithCleanupLogger(logger.WithField("layer", "outbox-cleanup")),
		outbox.WithCleanupMetrics(outboxMetrics),
		outbox.WithCleanupInterval(cfg.OutboxCleanupInterval),
		outbox.WithRetention(cfg.OutboxRetention),
	)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()
	cleanerDone := make(chan struct{})
	go func() {
		defer close(cleanerDone)
		cleaner.Run(workerCtx)
	}()

	healthHandler := newHealthHandler(application, cfg)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем сервис")
	shutdownHTTP(metricsSrv, logger)
	shutdownOutboxWorker(cancelWorker, workerDone, logger)
	shutdownOutboxWorker(nil, cleanerDone, logger)
	return ctx.Err()
}

func newHealthHandler(application *App, cfg Config) *healthcheck.Handler {
	handler := healthcheck.NewHandler(version.GetVersion())
	handler.RegisterChecker("storage", application.storageChecker)
	handler.RegisterChecker("outbox", healthcheck.NewOutboxBacklogChecker(application.Outbox, cfg.OutboxMaxPending, cfg.OutboxMaxAge))
	return handler
}

// startMetricsServer запускает HTTP-обработчики /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

// shutdownOutboxWorker останавливает worker и ждёт его завершения не дольше 5 секунд.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker не остановился за 5s")
	}
}

// logPublisher пишет события в лог, когда Kafka не настроена.
type logPublisher struct {
	logger *log.Entry
}

func (p logPublisher) Publish(_ context.Context, msg domain.OutboxMessage) error {
	p.logger.WithFields(log.Fields{
		"outbox_id":      msg.ID,
		"event_type":     msg.EventType,
		"aggregate_type": msg.AggregateType,
		"aggregate_id":   msg.AggregateID,
	}).Debug("outbox event published to log")
	return nil
}
