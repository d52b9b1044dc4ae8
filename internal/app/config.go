package app

import "time"

// Драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	DefaultCurrency string

	KafkaBrokers  []string
	KafkaClientID string
	KafkaTopic    string
	KafkaDLQTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// OutboxMaxPending и OutboxMaxAge — пороги, после которых /healthz сообщает о деградации.
	OutboxMaxPending int
	OutboxMaxAge     time.Duration
	// Обработанные сообщения старше OutboxRetention удаляются раз в OutboxCleanupInterval.
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:           ":9090",
		StorageDriver:         StorageDriverMemory,
		PostgresAutoMigrate:   true,
		DefaultCurrency:       "USD",
		KafkaClientID:         "commerce-service",
		KafkaTopic:            "commerce.entity.events",
		KafkaDLQTopic:         "commerce.dlq",
		OutboxPollInterval:    time.Second,
		OutboxBatchSize:       100,
		OutboxMaxAttempts:     3,
		OutboxRetryDelay:      50 * time.Millisecond,
		OutboxMaxPending:      1000,
		OutboxMaxAge:          5 * time.Minute,
		OutboxRetention:       24 * time.Hour,
		OutboxCleanupInterval: 10 * time.Minute,
	}
}
