package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/commerce/internal/health"
	"github.com/vladislavdragonenkov/commerce/internal/service/order"
	"github.com/vladislavdragonenkov/commerce/internal/storage/memory"
	"github.com/vladislavdragonenkov/commerce/internal/storage/postgres"
)

var errPostgresDSNRequired = errors.New("postgres dsn is required for postgres storage driver")

// runtimeDependencies — хранилища выбранного драйвера.
type runtimeDependencies struct {
	addresses      domain.CustomerAddressStore
	paymentMethods domain.PaymentMethodStore
	orders         domain.OrderStore
	lineItems      domain.LineItemStore
	adjustments    domain.AdjustmentStore
	lookups        domain.Lookups
	outboxRepo     domain.OutboxStore
	// cleaners удаляют дочерние записи заказа; postgres делает это каскадом.
	cleaners       []order.Cleaner
	storageChecker healthcheck.Checker
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}

	switch driver {
	case StorageDriverMemory:
		lineItems := memory.NewLineItemStore()
		outboxRepo := memory.NewOutboxRepository()
		adjustments := memory.NewAdjustmentStore()
		logger.Info("using in-memory storage")
		return runtimeDependencies{
			addresses:      memory.NewAddressStore(),
			paymentMethods: memory.NewPaymentMethodStore(),
			orders:         memory.NewOrderStore(),
			lineItems:      lineItems,
			adjustments:    adjustments,
			lookups:        memory.NewLookupStore(),
			outboxRepo:     outboxRepo,
			cleaners:       []order.Cleaner{lineItems, adjustments},
			storageChecker: healthcheck.NewSimpleChecker("storage", func(context.Context) error { return nil }),
		}, nil

	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return runtimeDependencies{}, errPostgresDSNRequired
		}
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeDependencies{}, fmt.Errorf("apply postgres migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}
		outboxRepo := postgres.NewOutboxRepository(store)
		logger.Info("using postgres storage")
		return runtimeDependencies{
			addresses:      postgres.NewAddressStore(store),
			paymentMethods: postgres.NewPaymentMethodStore(store),
			orders:         postgres.NewOrderStore(store),
			lineItems:      postgres.NewLineItemStore(store),
			adjustments:    postgres.NewAdjustmentStore(store),
			lookups:        postgres.NewLookupStore(store),
			outboxRepo:     outboxRepo,
			storageChecker: healthcheck.NewSimpleChecker("storage", store.Ping),
			closeFn:        store.Close,
		}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func (d runtimeDependencies) close() error {
	if d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}
