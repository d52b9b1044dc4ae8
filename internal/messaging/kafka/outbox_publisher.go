package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

var errPublisherNotInitialized = errors.New("kafka outbox publisher is not initialized")

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
// Ключ сообщения: aggregateType:aggregateID.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicEntityEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Topic возвращает topic публикации.
func (p *OutboxTopicPublisher) Topic() string {
	return p.topic
}

func (p *OutboxTopicPublisher) Publish(ctx context.Context, msg domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errPublisherNotInitialized
	}

	key := msg.AggregateType + ":" + msg.AggregateID
	if msg.AggregateID == "" {
		key = msg.ID
	}

	event := EntityEvent{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     EventType(msg.EventType),
		PublishedAt:   p.now().UTC(),
	}
	if len(msg.Payload) > 0 {
		event.Payload = msg.Payload
	}

	return p.producer.PublishEvent(ctx, p.topic, key, event,
		Header{Key: HeaderEventType, Value: msg.EventType},
		Header{Key: HeaderAggregateType, Value: msg.AggregateType},
		Header{Key: HeaderOutboxID, Value: msg.ID},
	)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
