package services

import (
	"time"

	"payments-dashboard/logger"
	"payments-dashboard/services/kafka"
)

// Payment lifecycle events published to Kafka. Publishing is fire-and-forget
// and never blocks or fails the request that triggered it.

// PublishPaymentInitiated announces a freshly created collect request
func PublishPaymentInitiated(collectID, schoolID string, amount float64) {
	go func() {
		evt := map[string]interface{}{
			"event":      "payment.initiated",
			"collect_id": collectID,
			"school_id":  schoolID,
			"amount":     amount,
			"status":     "pending",
			"ts":         time.Now().UTC().Format(time.RFC3339),
		}
		if err := kafka.Publish("order-"+collectID, evt); err != nil {
			logger.Warn("Failed to publish payment.initiated for %s: %v", collectID, err)
		}
	}()
}

// PublishPaymentUpdated announces a status merge from a webhook or an
// on-demand status check
func PublishPaymentUpdated(collectID, status, source string) {
	go func() {
		evt := map[string]interface{}{
			"event":      "payment.updated",
			"collect_id": collectID,
			"status":     status,
			"source":     source,
			"ts":         time.Now().UTC().Format(time.RFC3339),
		}
		if err := kafka.Publish("order-"+collectID, evt); err != nil {
			logger.Warn("Failed to publish payment.updated for %s: %v", collectID, err)
		}
	}()
}
