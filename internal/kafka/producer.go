package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is published when a draft is submitted and again when the
// booking is confirmed. The worker settles promo usage off the confirmed event.
type BookingEvent struct {
	Type               string    `json:"type"`
	Reference          string    `json:"reference"`
	LocationID         string    `json:"location_id"`
	FlightTypeID       string    `json:"flight_type_id"`
	FlightDate         time.Time `json:"flight_date"`
	Headcount          int       `json:"headcount"`
	Currency           string    `json:"currency"`
	TotalPrice         float64   `json:"total_price"`
	PromoCode          string    `json:"promo_code,omitempty"`
	BookingSource      string    `json:"booking_source"`
	ContactName        string    `json:"contact_name"`
	ContactPhone       string    `json:"contact_phone"`
	ContactEmail       string    `json:"contact_email,omitempty"`
}

const (
	EventBookingSubmitted = "booking_submitted"
	EventBookingConfirmed = "booking_confirmed"
)

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
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

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}
		lastErr = err

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
