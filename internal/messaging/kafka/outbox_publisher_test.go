package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/commerce/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event EntityEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.EventType != EventTypeAddressSaved || event.AggregateID != "42" {
			return fmt.Errorf("unexpected event: %+v", event)
		}
		if string(event.Payload) != `{"id":42}` {
			return fmt.Errorf("unexpected payload: %s", event.Payload)
		}
		if !event.PublishedAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
			return fmt.Errorf("unexpected published_at: %s", event.PublishedAt)
		}
		return nil
	})

	producer := newProducer(mockProducer, log.WithField("component", "kafka-outbox-publisher-test"))
	publisher := NewOutboxPublisher(producer, "")
	publisher.now = func() time.Time { return time.Date(2026, 3, 1, 3, 0, 0, 0, time.FixedZone("MSK", 3*3600)) }

	if publisher.Topic() != TopicEntityEvents {
		t.Fatalf("expected default topic %s, got %s", TopicEntityEvents, publisher.Topic())
	}

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: "address",
		AggregateID:   "42",
		EventType:     string(EventTypeAddressSaved),
		Payload:       []byte(`{"id":42}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil), TopicDeadLetterQueue)

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: "payment_method",
		AggregateID:   "7",
		EventType:     string(EventTypePaymentMethodSaved),
		Payload:       []byte(`{"id":7}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishEmptyPayload(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	publisher := NewOutboxPublisher(newProducer(mockProducer, nil), TopicEntityEvents)
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-4"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicEntityEvents)
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}
