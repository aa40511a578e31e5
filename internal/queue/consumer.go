package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/talenthub/competency-api/pkg/logger"
)

// Deliverer sends one verification email. The consumer stays ignorant of
// SMTP details.
type Deliverer interface {
	SendVerification(ctx context.Context, to, name, token string) error
}

// StartVerificationConsumer connects to the broker, declares the durable
// verification queue and consumes email events, handing each to the
// deliverer. It runs a reconnect loop with exponential backoff and returns
// only when ctx is cancelled. A message that fails delivery is rejected
// without requeue to avoid tight redelivery loops.
func StartVerificationConsumer(ctx context.Context, url string, d Deliverer) {
	log := logger.Get()

	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn().Err(err).Dur("retry_in", backoff).Msg("email-consumer: dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(ctx, conn, d); err != nil {
			log.Warn().Err(err).Msg("email-consumer: consume loop ended, reconnecting")
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, d Deliverer) error {
	log := logger.Get()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn().Err(err).Msg("email-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(VerificationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(VerificationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, msg.Body, d); err != nil {
				log.Error().Err(err).Msg("email-consumer: handle message failed")
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

func handleMessage(ctx context.Context, body []byte, d Deliverer) error {
	var ev VerificationEmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return d.SendVerification(ctx, ev.Email, ev.FullName, ev.Token)
}
