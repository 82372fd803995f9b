// Package email delivers booking tickets. Delivery is simulated by logging.
package email

import (
	"context"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/kafka"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/sirupsen/logrus"
)

type TicketRenderer interface {
	Render(b *domain.Booking) string
}

type Sender struct {
	tickets TicketRenderer
	logger  logrus.FieldLogger
}

func NewSender(tickets TicketRenderer, logger logrus.FieldLogger) *Sender {
	return &Sender{tickets: tickets, logger: logger}
}

// Send mails the ticket for newly created bookings and ignores other events.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Type != kafka.EventBookingCreated || event.Booking == nil {
		s.logger.WithFields(logrus.Fields{"event": event.Type, "booking_id": event.BookingID}).Debug("skipping event")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := s.tickets.Render(event.Booking)
	s.logger.WithFields(logrus.Fields{
		"to":         event.Email,
		"reference":  event.Reference,
		"attachment": ticket.FileName(event.Booking),
		"bytes":      len(body),
	}).Info("ticket e-mail sent")
	return nil
}
