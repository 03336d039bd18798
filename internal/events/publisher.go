package events

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Publish sends a persistent JSON message to the feed exchange.
func Publish(ch *amqp.Channel, routingKey string, message any) error {
	const op = "events.Publish"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
