package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"tutordesk/internal/model"
)

// SessionEventPublisher fans session changes out to every server instance.
type SessionEventPublisher struct {
	conn     *amqp.Connection
	exchange string
}

func NewSessionEventPublisher(conn *amqp.Connection, exchange string) *SessionEventPublisher {
	return &SessionEventPublisher{
		conn:     conn,
		exchange: exchange,
	}
}

func (p *SessionEventPublisher) Publish(ctx context.Context, evt model.SessionEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if err := DeclareSessionExchange(ch, p.exchange); err != nil {
		return err
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal session event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		p.exchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        payload,
		},
	); err != nil {
		return fmt.Errorf("publish session event failed: %w", err)
	}
	return nil
}

func DeclareSessionExchange(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("declare session exchange failed: %w", err)
	}
	return nil
}
