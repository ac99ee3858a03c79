// Package broadcaster drains the event outbox into a Kafka topic.
package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"

	"matchbook/infra/outbox"
)

// Broadcaster periodically publishes pending outbox records. Delivery is
// at-least-once: a record is marked SENT before publishing and deleted
// only after the producer confirms it, so a crash between the two replays
// the record on the next drain.
type Broadcaster struct {
	out      *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	every    time.Duration
	log      *logrus.Logger
}

// Connect builds a synchronous producer with full-ISR acks.
func Connect(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	return sarama.NewSyncProducer(brokers, cfg)
}

func New(
	out *outbox.Outbox,
	producer sarama.SyncProducer,
	topic string,
	every time.Duration,
	log *logrus.Logger,
) *Broadcaster {
	return &Broadcaster{
		out:      out,
		producer: producer,
		topic:    topic,
		every:    every,
		log:      log,
	}
}

// Run drains on a ticker until the context is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.WithField("topic", b.topic).Info("broadcaster started")

	ticker := time.NewTicker(b.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.drainOnce()
		}
	}
}

func (b *Broadcaster) drainOnce() {
	err := b.out.ScanPending(func(rec outbox.Record) error {
		if err := b.out.MarkSent(rec.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(rec.Seq, 10)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.log.WithError(err).WithField("seq", rec.Seq).Warn("publish failed, will retry")
			return nil
		}

		return b.out.Ack(rec.Seq)
	})
	if err != nil {
		b.log.WithError(err).Error("outbox drain failed")
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
