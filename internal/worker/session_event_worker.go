package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"tutordesk/internal/model"
	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/platform/rabbitmq"
)

type Dispatcher interface {
	Dispatch(evt model.SessionEvent)
}

// SessionEventWorker consumes the session fanout exchange through a private
// queue and hands every event to the local subscriber hub.
type SessionEventWorker struct {
	conn       *amqp.Connection
	exchange   string
	dispatcher Dispatcher
	log        *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSessionEventWorker(conn *amqp.Connection, exchange string, dispatcher Dispatcher, log *logger.Logger) *SessionEventWorker {
	return &SessionEventWorker{
		conn:       conn,
		exchange:   exchange,
		dispatcher: dispatcher,
		log:        log.With("worker", "SessionEventWorker"),
	}
}

func (w *SessionEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareSessionExchange(ch, w.exchange); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	queue, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "", w.exchange, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("bind worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		queue.Name,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handle(d.Body)
			}
		}
	}()

	return nil
}

func (w *SessionEventWorker) handle(body []byte) {
	var evt model.SessionEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		w.log.Warn("decode session event failed", "error", err)
		return
	}
	if evt.UserID == "" {
		w.log.Warn("session event without user id dropped")
		return
	}
	w.dispatcher.Dispatch(evt)
}

func (w *SessionEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
