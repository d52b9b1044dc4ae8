package kafka

import (
	"encoding/json"
	"time"
)

// EventType определяет тип события сущности.
type EventType string

const (
	EventTypeAddressSaved       EventType = "address.saved"
	EventTypePaymentMethodSaved EventType = "payment_method.saved"
)

// Topics для Kafka
const (
	TopicEntityEvents    = "commerce.entity.events"
	TopicDeadLetterQueue = "commerce.dlq"
)

// Заголовки сообщений, по которым потребители фильтруют события без разбора тела.
const (
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
	HeaderOutboxID      = "x-outbox-id"
)

// EntityEvent — конверт события, публикуемого из outbox.
type EntityEvent struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}
