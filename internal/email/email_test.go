package email

import (
	"context"
	"testing"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/kafka"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(b *domain.Booking) string {
	return m.Called(b).String(0)
}

func TestSender_SendsTicketForCreatedBooking(t *testing.T) {
	logger, hook := test.NewNullLogger()
	renderer := &MockRenderer{}
	booking := &domain.Booking{ID: "b1", BookingReference: "SV-ABCDEFGH"}
	renderer.On("Render", booking).Return("<html></html>").Once()

	s := NewSender(renderer, logger)
	err := s.Send(context.Background(), kafka.BookingEvent{
		Type:      kafka.EventBookingCreated,
		BookingID: "b1",
		Reference: "SV-ABCDEFGH",
		Email:     "ada@example.com",
		Booking:   booking,
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "ada@example.com", entry.Data["to"])
	assert.Equal(t, "SpaceVoyager-Ticket-SV-ABCDEFGH.html", entry.Data["attachment"])
	renderer.AssertExpectations(t)
}

func TestSender_IgnoresOtherEvents(t *testing.T) {
	logger, _ := test.NewNullLogger()
	renderer := &MockRenderer{}
	s := NewSender(renderer, logger)

	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingCancelled, Booking: &domain.Booking{}}))
	require.NoError(t, s.Send(context.Background(), kafka.BookingEvent{Type: kafka.EventBookingCreated}))
	renderer.AssertNotCalled(t, "Render", mock.Anything)
}

func TestSender_CancelledContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewSender(&MockRenderer{}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Send(ctx, kafka.BookingEvent{Type: kafka.EventBookingCreated, Booking: &domain.Booking{}})
	assert.ErrorIs(t, err, context.Canceled)
}
