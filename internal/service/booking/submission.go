package booking

import (
	"context"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/kafka"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
	"github.com/sirupsen/logrus"
)

// Result distinguishes a business rejection (Success=false, message shown to
// the user verbatim) from a transport failure, which comes back as a Go error.
// Neither outcome clears the caller's draft.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type SubmissionService interface {
	Submit(ctx context.Context, draft *domain.BookingDraft) (Result, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	bookings           repository.BookingRepository
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	logger             *logrus.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(bookings repository.BookingRepository, producer Producer, eventsTopic string, logger *logrus.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	service := &Service{
		bookings:    bookings,
		producer:    producer,
		eventsTopic: eventsTopic,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *Service) Submit(ctx context.Context, draft *domain.BookingDraft) (Result, error) {
	if err := s.bookings.Create(ctx, draft); err != nil {
		return Result{}, err
	}

	if err := s.publish(ctx, kafka.EventBookingSubmitted, draft); err != nil {
		s.logger.WithFields(logrus.Fields{
			"reference": draft.Reference,
		}).Warnf("failed to publish booking event: %v", err)
	}

	return Result{Success: true}, nil
}

func (s *Service) publish(ctx context.Context, eventType string, draft *domain.BookingDraft) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		Reference:     draft.Reference,
		LocationID:    draft.LocationID,
		FlightTypeID:  draft.FlightTypeID,
		FlightDate:    draft.FlightDate,
		Headcount:     draft.Headcount,
		Currency:      string(draft.Currency),
		TotalPrice:    draft.TotalPrice,
		PromoCode:     draft.PromoCode,
		BookingSource: string(draft.BookingSource),
		ContactName:   draft.Contact.FullName,
		ContactPhone:  draft.Contact.Phone,
		ContactEmail:  draft.Contact.Email,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, draft.Reference, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, draft.Reference, event)
	}
	return nil
}

var _ SubmissionService = (*Service)(nil)
