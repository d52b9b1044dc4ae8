package app

import (
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestInitKafkaProducer_EmptyBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer(nil, "commerce-test", logger)

	if err != nil {
		t.Errorf("expected no error for empty brokers, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer for empty brokers")
	}
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer([]string{"invalid-broker:9999"}, "commerce-test", logger)

	if err == nil {
		t.Error("expected error for invalid brokers")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestInitKafkaProducer_MultipleBrokers(t *testing.T) {
	logger := log.WithField("test", "kafka")

	producer, err := initKafkaProducer(ParseBrokers("broker1:9092, broker2:9092,broker3:9092"), "commerce-test", logger)

	if err == nil {
		t.Error("expected error for invalid brokers")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestCloseKafka_NilProducer(_ *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}
