package kafka

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/olyadmengistu/quicktalk/configs"
)

// Producer publishes messages to the configured topic.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(cfg *configs.Config) *Producer {
	brokers := strings.Split(cfg.KafkaBrokers, ",")
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Handler processes one consumed message. Errors are logged, not retried.
type Handler func(ctx context.Context, key, value []byte) error

// Consumer reads the topic in a consumer group.
type Consumer struct {
	reader *kafka.Reader
	handle Handler
}

func NewConsumer(cfg *configs.Config, h Handler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        strings.Split(cfg.KafkaBrokers, ","),
			GroupID:        cfg.KafkaGroupID,
			Topic:          cfg.KafkaTopic,
			MinBytes:       10e3,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		handle: h,
	}
}

// Run fetches, handles, and commits until ctx ends.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		_ = c.reader.Close()
	}()

	log.Printf("[kafka] consumer started | group=%s | topic=%s",
		c.reader.Config().GroupID, c.reader.Config().Topic)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[kafka] fetch error: %v", err)
			time.Sleep(time.Second)
			continue
		}

		if c.handle != nil {
			if e := c.handle(ctx, m.Key, m.Value); e != nil {
				log.Printf("[kafka] handler error: %v", e)
			}
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Printf("[kafka] commit error: %v", err)
		}
	}
}
