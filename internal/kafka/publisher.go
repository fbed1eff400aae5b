package kafka

import (
	"context"
	"strconv"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/segmentio/kafka-go"
)

// Publisher routes envelopes to their topic, keyed by session id.
type Publisher struct {
	P *Producer
}

var _ orders.EventSink = (*Publisher)(nil)

func (p *Publisher) Emit(_ context.Context, env orders.Envelope) {
	topic := orders.TopicFor(env.EventType)
	if topic == "" {
		p.P.log.Warn().Str("event", env.EventType).Msg("no topic for event, dropped")
		return
	}
	p.P.Publish(topic, orders.PartitionKey(env.CorrelationID), MustMarshal(env), Headers(env)...)
}

func Headers(env orders.Envelope) []kafka.Header {
	return []kafka.Header{
		{Key: "x-event-type", Value: []byte(env.EventType)},
		{Key: "x-event-version", Value: []byte(strconv.Itoa(env.EventVersion))},
	}
}
