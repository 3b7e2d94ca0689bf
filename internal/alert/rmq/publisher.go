package rmq

import (
	"context"
	"encoding/json"
	"fmt"

	"aparajita/internal/common/logger"
	"aparajita/internal/common/rmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

func (c *Client) PublishAlertRaised(ctx context.Context, msg rmq.AlertBroadcastMessage) error {
	return c.publish(ctx, rmq.RoutingKeyAlertRaised, msg)
}

func (c *Client) PublishAlertResolved(ctx context.Context, msg rmq.AlertBroadcastMessage) error {
	return c.publish(ctx, rmq.RoutingKeyAlertResolved, msg)
}

func (c *Client) publish(ctx context.Context, routingKey string, msg rmq.AlertBroadcastMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal broadcast: %w", err)
	}

	err = c.Channel.PublishWithContext(ctx,
		c.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	logger.Info("rmq_published", fmt.Sprintf("broadcast %s published", routingKey), msg.SourceUserID, msg.AlertID)
	return nil
}
