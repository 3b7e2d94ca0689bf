package rmq

import (
	"encoding/json"
	"fmt"

	"aparajita/internal/common/logger"
	"aparajita/internal/common/rmq"
)

// Subscribe binds the configured inbox queue to the alert topic and feeds
// every decoded broadcast to apply. Implements the alert service's Source
// interface.
func (c *Client) Subscribe(apply func(msg rmq.AlertBroadcastMessage)) error {
	return c.consume(c.Queue, apply)
}

func (c *Client) consume(queueName string, apply func(msg rmq.AlertBroadcastMessage)) error {
	ch := c.Channel

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		q.Name,
		"alert.*",
		c.Exchange,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go func() {
		for d := range deliveries {
			var msg rmq.AlertBroadcastMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				logger.Warn("rmq_unmarshal_failed", "failed to unmarshal alert broadcast", "", "", err.Error())
				continue
			}
			logger.Debug("rmq_message_received", "alert broadcast received", msg.SourceUserID, msg.AlertID)
			apply(msg)
		}
	}()

	return nil
}
