package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/app"
	"github.com/vladislavdragonenkov/commerce/internal/version"
)

const (
	envLogLevel            = "COMMERCE_LOG_LEVEL"
	envMetricsAddr         = "COMMERCE_METRICS_ADDR"
	envStorageDriver       = "COMMERCE_STORAGE_DRIVER"
	envPostgresDSN         = "COMMERCE_POSTGRES_DSN"
	envPostgresAutoMigrate = "COMMERCE_POSTGRES_AUTO_MIGRATE"
	envDefaultCurrency     = "COMMERCE_DEFAULT_CURRENCY"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envKafkaTopic          = "COMMERCE_KAFKA_TOPIC"
	envKafkaDLQTopic       = "COMMERCE_KAFKA_DLQ_TOPIC"
	envOutboxPollInterval  = "COMMERCE_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize     = "COMMERCE_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts   = "COMMERCE_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay    = "COMMERCE_OUTBOX_RETRY_DELAY"
	envOutboxMaxPending    = "COMMERCE_OUTBOX_MAX_PENDING"
	envOutboxMaxAge        = "COMMERCE_OUTBOX_MAX_AGE"
	envOutboxRetention     = "COMMERCE_OUTBOX_RETENTION"
	envOutboxCleanup       = "COMMERCE_OUTBOX_CLEANUP_INTERVAL"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	raw, ok := lookup(envLogLevel)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	level, err := log.ParseLevel(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", envLogLevel, err)
	}
	log.SetLevel(level)
	return nil
}

// readConfigFromEnv накладывает переменные окружения на app.DefaultConfig().
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию, ошибка попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []error) {
	cfg := app.DefaultConfig()
	var warnings []error

	str := func(key string, dst *string, transform func(string) string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = transform(strings.TrimSpace(v))
		}
	}
	keep := func(s string) string { return s }

	str(envMetricsAddr, &cfg.MetricsAddr, keep)
	str(envStorageDriver, &cfg.StorageDriver, strings.ToLower)
	str(envPostgresDSN, &cfg.PostgresDSN, keep)
	str(envDefaultCurrency, &cfg.DefaultCurrency, strings.ToUpper)
	str(envKafkaTopic, &cfg.KafkaTopic, keep)
	str(envKafkaDLQTopic, &cfg.KafkaDLQTopic, keep)
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = app.ParseBrokers(v)
	}

	if v, ok := lookup(envPostgresAutoMigrate); ok {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", envPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}

	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }
	nonNegativeDuration := func(v time.Duration) bool { return v >= 0 }

	intVars := []struct {
		key   string
		dst   *int
		valid func(int) bool
		rule  string
	}{
		{envOutboxBatchSize, &cfg.OutboxBatchSize, positive, "must be > 0"},
		{envOutboxMaxAttempts, &cfg.OutboxMaxAttempts, positive, "must be > 0"},
		{envOutboxMaxPending, &cfg.OutboxMaxPending, nonNegative, "must be >= 0"},
	}
	for _, iv := range intVars {
		v, ok := lookup(iv.key)
		if !ok {
			continue
		}
		parsed, err := parseInt(v, iv.valid, iv.rule)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", iv.key, err))
			continue
		}
		*iv.dst = parsed
	}

	durationVars := []struct {
		key   string
		dst   *time.Duration
		valid func(time.Duration) bool
		rule  string
	}{
		{envOutboxPollInterval, &cfg.OutboxPollInterval, positiveDuration, "must be > 0"},
		{envOutboxRetryDelay, &cfg.OutboxRetryDelay, nonNegativeDuration, "must be >= 0"},
		{envOutboxMaxAge, &cfg.OutboxMaxAge, nonNegativeDuration, "must be >= 0"},
		{envOutboxRetention, &cfg.OutboxRetention, nonNegativeDuration, "must be >= 0"},
		{envOutboxCleanup, &cfg.OutboxCleanupInterval, positiveDuration, "must be > 0"},
	}
	for _, dv := range durationVars {
		v, ok := lookup(dv.key)
		if !ok {
			continue
		}
		parsed, err := parseDuration(v, dv.valid, dv.rule)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", dv.key, err))
			continue
		}
		*dv.dst = parsed
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q: %w", raw, err)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q: %w", raw, err)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	if err := setupLogger(os.LookupEnv); err != nil {
		log.WithError(err).Warn("некорректный уровень логирования, используем info")
	}
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.WithError(w).Warn("некорректное значение переменной окружения, используем значение по умолчанию")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(version.Current().Fields()).WithFields(log.Fields{
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka_brokers":  cfg.KafkaBrokers,
	}).Info("запускаем commerce-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("commerce-service остановлен")
}
