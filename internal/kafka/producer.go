package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingUpdated   = "booking_updated"
	EventBookingCancelled = "booking_cancelled"
	EventBookingDeleted   = "booking_deleted"
)

// BookingEvent carries the full booking so consumers can render the ticket
// without reading the booking store.
type BookingEvent struct {
	Type       string          `json:"type"`
	BookingID  string          `json:"booking_id"`
	Reference  string          `json:"reference"`
	UserID     string          `json:"user_id"`
	Email      string          `json:"email"`
	Status     string          `json:"status"`
	OccurredAt time.Time       `json:"occurred_at"`
	Booking    *domain.Booking `json:"booking,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	brokers []string
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  logrus.FieldLogger
}

func NewProducer(brokers []string, logger logrus.FieldLogger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(brokers, writer, logger)
}

func newProducer(brokers []string, writer messageWriter, logger logrus.FieldLogger) *Producer {
	return &Producer{
		brokers: brokers,
		writer:  writer,
		breaker: CircuitBreaker("kafka-producer", logger),
		logger:  logger,
	}
}

// CircuitBreaker opens after three consecutive failures so a dead broker does
// not slow down every booking operation.
func CircuitBreaker(name string, logger logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).Warn("circuit breaker state changed")
		},
	})
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.writer.WriteMessages(ctx, message)
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{"topic": topic, "key": key}).Debug("published event")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ReadPartitions(); err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}
	return nil
}
