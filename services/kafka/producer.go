package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"payments-dashboard/config"
	"payments-dashboard/logger"
)

var (
	producer      *kafka.Writer
	producerMutex sync.Mutex
)

// InitProducer initializes a Kafka writer using brokers from the config.
// Kafka is optional: with no brokers configured every publish is a no-op.
func InitProducer() {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if config.AppConfig.KafkaBrokers == "" {
		logger.Info("Kafka is disabled (KAFKA_BROKERS is empty)")
		return
	}

	var brokers []string
	for _, b := range strings.Split(config.AppConfig.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		logger.Warn("No valid Kafka brokers configured")
		return
	}

	producer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        config.AppConfig.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		Async:        false,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("Kafka producer initialized. Brokers=%v, Topic=%s", brokers, config.AppConfig.KafkaTopic)
}

// Publish marshals value to JSON and publishes it with the given key.
// Best-effort: returns nil when Kafka is disabled.
func Publish(key string, value interface{}) error {
	producerMutex.Lock()
	w := producer
	producerMutex.Unlock()

	if w == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
}

// Close shuts the producer down gracefully
func Close() error {
	producerMutex.Lock()
	defer producerMutex.Unlock()

	if producer == nil {
		return nil
	}
	err := producer.Close()
	producer = nil
	return err
}
