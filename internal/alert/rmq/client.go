package rmq

import (
	"fmt"

	"aparajita/internal/common/rmq"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Client struct {
	mq       *rmq.RabbitMQ
	Channel  *amqp.Channel
	Exchange string
	Queue    string
}

// NewClient connects to the broker with retry and declares the alert topic
// exchange. Queue is the name of this node's broadcast inbox.
func NewClient(rmqURL, exchange, queue string) (*Client, error) {
	mq, err := rmq.NewRabbitMQ(rmqURL)
	if err != nil {
		return nil, err
	}

	if err := mq.Chan.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		mq.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Client{
		mq:       mq,
		Channel:  mq.Chan,
		Exchange: exchange,
		Queue:    queue,
	}, nil
}

func (c *Client) Close() {
	c.mq.Close()
}
