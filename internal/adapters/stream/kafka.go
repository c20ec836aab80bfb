package stream

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"teamchat-service/internal/websocket"
)

// KafkaSink copies every dispatched event onto a Kafka topic for the
// analytics pipeline. Events are keyed by room so one room's events stay
// on one partition in dispatch order.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
		},
	}
}

// Publish forwards one event. Delivery is best effort from the dispatch
// path's point of view: a broker outage must not take the realtime fan-out
// down with it, so failures are logged and swallowed by the caller.
func (s *KafkaSink) Publish(ctx context.Context, ev *websocket.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(ev.RoomID), 10)),
		Value: value,
	})
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
