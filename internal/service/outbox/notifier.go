package outbox

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
	"github.com/vladislavdragonenkov/commerce/internal/metrics"
	"github.com/vladislavdragonenkov/commerce/internal/service/persist"
)

// SavedEventSuffix добавляется к имени сущности в EventType.
const SavedEventSuffix = ".saved"

// SavedEvent — тело события о сохранённой сущности.
type SavedEvent struct {
	Entity  string          `json:"entity"`
	ID      int64           `json:"id"`
	Data    json.RawMessage `json:"data"`
	SavedAt time.Time       `json:"saved_at"`
}

// Projection выбирает, какие поля сущности попадают в событие.
type Projection[M persist.Model] func(M) any

// NotifyOnSave возвращает наблюдатель, который после записи сущности кладёт
// событие <entity>.saved в outbox. Ошибки outbox не отменяют сохранение и только логируются.
// Без project в событие сериализуется сама модель.
func NotifyOnSave[M persist.Model](repo domain.OutboxRepository, entity string, project Projection[M], m *metrics.SaveMetrics, logger *log.Entry) persist.Hooks[M] {
	if logger == nil {
		logger = log.WithField("component", "outbox-notifier")
	}
	logger = logger.WithField("entity", entity)

	return persist.Hooks[M]{
		AfterSave: func(ctx context.Context, model M) {
			id := model.EntityID()
			entry := logger.WithField("entity_id", id)

			var body any = model
			if project != nil {
				body = project(model)
			}
			data, err := json.Marshal(body)
			if err != nil {
				entry.WithError(err).Warn("failed to encode saved entity")
				return
			}
			payload, err := json.Marshal(SavedEvent{
				Entity:  entity,
				ID:      id,
				Data:    data,
				SavedAt: time.Now().UTC(),
			})
			if err != nil {
				entry.WithError(err).Warn("failed to encode saved event")
				return
			}

			msg, err := repo.Enqueue(ctx, domain.OutboxMessage{
				AggregateType: entity,
				AggregateID:   strconv.FormatInt(id, 10),
				EventType:     entity + SavedEventSuffix,
				Payload:       payload,
			})
			if err != nil {
				entry.WithError(err).Warn("failed to enqueue saved event")
				return
			}
			if m != nil {
				m.RecordOutboxEnqueued()
			}
			entry.WithField("outbox_id", msg.ID).Debug("saved event enqueued")
		},
	}
}

// PaymentMethodSummary публикует способ оплаты без настроек шлюза.
func PaymentMethodSummary(method *domain.PaymentMethod) any {
	return method.Summary()
}
