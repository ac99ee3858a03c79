package intake

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Kafka consumes one quote line per message from a topic.
type Kafka struct {
	reader *kafka.Reader
}

func NewKafka(brokers []string, topic, group string) *Kafka {
	return &Kafka{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  group,
			MinBytes: 1,
			MaxBytes: 1 << 20,
		}),
	}
}

func (k *Kafka) Next(ctx context.Context) (string, error) {
	msg, err := k.reader.ReadMessage(ctx)
	if err != nil {
		return "", err
	}
	return string(msg.Value), nil
}

func (k *Kafka) Close() error {
	return k.reader.Close()
}
