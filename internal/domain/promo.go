package domain

import "time"

// PromoCode is a percentage discount gated by an activity flag, an optional
// validity window and an optional usage cap. UsageCount is incremented on
// confirmed bookings, never at apply time.
type PromoCode struct {
	Code               string
	DiscountPercentage float64
	IsActive           bool
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	UsageLimit         *int
	UsageCount         int
}
