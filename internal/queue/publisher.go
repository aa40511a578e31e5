package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/talenthub/competency-api/pkg/logger"
)

// Publisher pushes verification email events onto the broker. A connection
// is dialed per publish; the event volume here is a handful per minute and
// the simplicity beats connection babysitting.
type Publisher struct {
	url string
}

// NewPublisher returns a publisher for the given broker URL, or nil when the
// URL is empty and queued delivery is disabled.
func NewPublisher(url string) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url}
}

// PublishVerificationEmail enqueues the event on the durable verification
// queue. Errors are logged and returned so the caller can fall back to
// direct delivery.
func (p *Publisher) PublishVerificationEmail(ctx context.Context, ev VerificationEmailEvent) error {
	log := logger.Get()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(VerificationQueueName, true, false, false, false, nil); err != nil {
		log.Error().Err(err).Msg("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", VerificationQueueName, false, false, pub); err != nil {
		log.Error().Err(err).Msg("rabbitmq: publish failed")
		return err
	}
	return nil
}
