package email

import (
	"context"

	"github.com/lipo541/paragliding-web-sub003/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers booking notifications. Delivery is a log line for now; the
// interface stays so an SMTP or provider client can slot in.
type Sender struct {
	logger *logrus.Logger
}

func NewSender(logger *logrus.Logger) *Sender {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.ContactEmail == "" {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"to":        event.ContactEmail,
		"event":     event.Type,
		"reference": event.Reference,
		"headcount": event.Headcount,
		"total":     event.TotalPrice,
		"currency":  event.Currency,
	}).Info("booking notification email queued")
	return nil
}
