package rmq

import (
	"fmt"
	"math"
	"time"

	"aparajita/internal/common/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

const maxConnectAttempts = 5

// Overridable in tests.
var (
	dial    = amqp.Dial
	backoff = func(attempt int) {
		time.Sleep(time.Second * time.Duration(math.Pow(2, float64(attempt))))
	}
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Chan *amqp.Channel
	URL  string
}

// NewRabbitMQ dials url and opens a channel, retrying with exponential
// backoff while the broker comes up.
func NewRabbitMQ(url string) (*RabbitMQ, error) {
	rmq := &RabbitMQ{URL: url}

	if err := rmq.connect(); err != nil {
		return nil, err
	}
	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	var conn *amqp.Connection
	var err error

	for i := 1; i <= maxConnectAttempts; i++ {
		conn, err = dial(r.URL)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr != nil {
				_ = conn.Close()
				return fmt.Errorf("failed to open channel: %w", chErr)
			}
			r.Conn = conn
			r.Chan = ch
			logger.Info("rmq_connected", "connected to RabbitMQ", "", "")
			return nil
		}

		logger.Warn("rmq_connect_retry",
			fmt.Sprintf("RabbitMQ connect attempt %d failed", i), "", "", err.Error())
		if i < maxConnectAttempts {
			backoff(i)
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after retries: %w", err)
}

func (r *RabbitMQ) Close() {
	if r.Chan != nil {
		_ = r.Chan.Close()
	}
	if r.Conn != nil {
		_ = r.Conn.Close()
	}
	r.Conn, r.Chan = nil, nil
	logger.Info("rmq_closed", "RabbitMQ connection closed", "", "")
}
