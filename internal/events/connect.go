package events

import (
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect dials RabbitMQ with retries; the broker may come up after the
// service in compose environments.
func Connect(connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "events.Connect"
	var conn *amqp.Connection
	var err error

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel opens a channel and declares the feed exchange and queues.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "events.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	err = ch.ExchangeDeclare(
		Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bindings := []struct {
		queue string
		key   string
	}{
		{OrdersQueue, OrdersKey},
		{ProfilesQueue, ProfilesKey},
	}
	for _, b := range bindings {
		_, err := ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, b.queue, err)
		}
		if err := ch.QueueBind(b.queue, b.key, Exchange, false, nil); err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, b.queue, err)
		}
	}
	return ch, nil
}
