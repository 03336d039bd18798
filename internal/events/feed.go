package events

import "github.com/streadway/amqp"

// Feed is the typed publisher surface over the exchange.
type Feed struct {
	ch *amqp.Channel
}

// NewFeed wraps a declared channel.
func NewFeed(ch *amqp.Channel) *Feed {
	return &Feed{ch: ch}
}

// PublishOrderChanged announces an order ledger change.
func (f *Feed) PublishOrderChanged(ev OrderEvent) error {
	return Publish(f.ch, OrdersKey, ev)
}

// PublishProfileChanged announces an authority field change on a profile.
func (f *Feed) PublishProfileChanged(ev ProfileEvent) error {
	return Publish(f.ch, ProfilesKey, ev)
}
