// Package kafkabus ships fire-and-forget notification events to Kafka.
package kafkabus

import (
	"context"
	"encoding/json"
	"log/slog"

	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/commands"

	"github.com/segmentio/kafka-go"
)

type Publisher struct {
	writer *kafka.Writer
	topics map[string]string
	logger *slog.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{
		writer: writer,
		topics: map[string]string{
			commands.KindProductRanking:       cfg.RankingTopic,
			commands.KindDataPlatformTransfer: cfg.DataPlatformTopic,
		},
		logger: logger,
	}
}

var _ commands.EventPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, event commands.NotificationEvent) error {
	topic, ok := p.topics[event.Kind()]
	if !ok {
		return errs.Newf("no topic mapped for event kind %s", event.Kind())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "failed to encode event")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Value: payload,
	})
	if err != nil {
		return errs.Wrap(err, "failed to write message")
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
