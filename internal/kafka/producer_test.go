package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func TestProducer_Publish(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w := &MockWriter{}
	p := newProducer([]string{"localhost:9092"}, w, logger)
	ctx := context.Background()

	event := BookingEvent{Type: EventBookingCreated, BookingID: "b1", Reference: "SV-ABCDEFGH"}
	w.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 || msgs[0].Topic != "booking-events" || string(msgs[0].Key) != "b1" {
			return false
		}
		var got BookingEvent
		return json.Unmarshal(msgs[0].Value, &got) == nil && got.Reference == "SV-ABCDEFGH"
	})).Return(nil).Once()

	require.NoError(t, p.Publish(ctx, "booking-events", "b1", event))
	w.AssertExpectations(t)
}

func TestProducer_BreakerOpensAfterFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := &MockWriter{}
	p := newProducer([]string{"localhost:9092"}, w, logger)
	ctx := context.Background()

	w.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker down")).Times(3)

	for i := 0; i < 3; i++ {
		assert.Error(t, p.Publish(ctx, "t", "k", BookingEvent{}))
	}

	err := p.Publish(ctx, "t", "k", BookingEvent{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	w.AssertNumberOfCalls(t, "WriteMessages", 3)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestProducer_Close(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w := &MockWriter{}
	w.On("Close").Return(nil).Once()
	p := newProducer(nil, w, logger)
	assert.NoError(t, p.Close())
	assert.Error(t, p.CheckConnection(context.Background()))
}
