package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"tutordesk/internal/config"
)

// New dials the broker and declares the session exchange. It returns nil, nil
// when no URL is configured; session events then stay in process.
func New(ctx context.Context, cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareSessionExchange(ch, cfg.SessionEventExchange); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}
