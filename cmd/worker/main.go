package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/spacevoyager/config"
	"github.com/Domenick1991/spacevoyager/internal/catalog"
	"github.com/Domenick1991/spacevoyager/internal/email"
	"github.com/Domenick1991/spacevoyager/internal/kafka"
	"github.com/Domenick1991/spacevoyager/internal/logging"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log)

	topic := cfg.Kafka.NotificationsTopic
	if topic == "" {
		topic = cfg.Kafka.BookingEventsTopic
	}
	if len(cfg.Kafka.Brokers) == 0 || topic == "" {
		logger.Fatal("kafka brokers and a topic are required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	referenceData := catalog.NewStore(catalog.DefaultFS(), nil, logger.WithField("component", "catalog"))
	if err := referenceData.Load(ctx); err != nil {
		logger.WithError(err).Warn("tickets will show raw destination and accommodation ids")
	}
	renderer, err := ticket.NewRenderer(referenceData)
	if err != nil {
		logger.WithError(err).Fatal("build ticket renderer")
	}
	sender := email.NewSender(renderer, logger.WithField("component", "email"))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topic)
	defer consumer.Close()

	logger.WithField("topic", topic).Info("worker started")
	if err := consumer.Consume(ctx, kafka.BookingEventHandler(logger, sender.Send)); err != nil {
		logger.WithError(err).Error("consumer stopped")
		return
	}
	logger.Info("worker stopped")
}
