// Command server runs the matching engine as a daemon: order lines are
// consumed from a Kafka topic, trade events are staged in a pebble outbox
// and broadcast to a Kafka topic.
package main

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"matchbook/domain/book"
	"matchbook/infra/feed"
	"matchbook/infra/intake"
	"matchbook/infra/outbox"
	"matchbook/infra/sequence"
	"matchbook/jobs/broadcaster"
	"matchbook/service"
)

func main() {
	cfg := loadConfig()
	log := newLogger(cfg.GetString("log.level"))

	// ---------------- Outbox ----------------

	out, err := outbox.Open(cfg.GetString("outbox.dir"))
	if err != nil {
		log.WithError(err).Fatal("outbox init failed")
	}
	defer out.Close()

	// ---------------- Broadcaster ----------------

	producer, err := broadcaster.Connect(cfg.GetStringSlice("kafka.brokers"))
	if err != nil {
		log.WithError(err).Fatal("kafka producer init failed")
	}

	bc := broadcaster.New(
		out,
		producer,
		cfg.GetString("kafka.trades_topic"),
		cfg.GetDuration("broadcast.interval"),
		log,
	)
	defer bc.Close()

	// ---------------- Engine ----------------

	b := book.New(feed.NewOutboxSink(out, log))
	svc := service.New(b, sequence.New(0), log)

	// ---------------- Intake ----------------

	src := intake.NewKafka(
		cfg.GetStringSlice("kafka.brokers"),
		cfg.GetString("kafka.orders_topic"),
		cfg.GetString("kafka.group"),
	)
	defer src.Close()

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	go bc.Run(ctx)

	log.WithFields(logrus.Fields{
		"orders_topic": cfg.GetString("kafka.orders_topic"),
		"trades_topic": cfg.GetString("kafka.trades_topic"),
	}).Info("matching engine running")

	if err := svc.Run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("intake loop failed")
	}

	bids, asks := svc.Depth()
	log.WithFields(logrus.Fields{
		"bid_levels": len(bids),
		"ask_levels": len(asks),
	}).Info("matching engine stopped")
}

func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.orders_topic", "orders")
	v.SetDefault("kafka.trades_topic", "trades")
	v.SetDefault("kafka.group", "matchbook")
	v.SetDefault("outbox.dir", "./outbox")
	v.SetDefault("broadcast.interval", "250ms")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("MATCHBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("matchbook")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // config file is optional

	return v
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}
	return log
}
