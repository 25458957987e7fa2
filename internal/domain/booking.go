package domain

import "time"

type BookingSource string

const (
	SourcePlatform      BookingSource = "platform"
	SourcePilotDirect   BookingSource = "pilot-direct"
	SourceCompanyDirect BookingSource = "company-direct"
)

// BookingScope is the set of locations permitted under a direct-booking
// context. A nil AllowedLocationIDs means every location is permitted.
type BookingScope struct {
	Mode               BookingSource
	AllowedLocationIDs map[string]struct{}
}

func PlatformScope() BookingScope {
	return BookingScope{Mode: SourcePlatform}
}

func (s BookingScope) Allows(locationID string) bool {
	if s.AllowedLocationIDs == nil {
		return true
	}
	_, ok := s.AllowedLocationIDs[locationID]
	return ok
}

type ContactMethod string

const (
	ContactPhone    ContactMethod = "phone"
	ContactWhatsApp ContactMethod = "whatsapp"
	ContactTelegram ContactMethod = "telegram"
)

// Contact is what the visitor fills in before submitting.
type Contact struct {
	Method   ContactMethod `json:"method"`
	FullName string        `json:"full_name"`
	Phone    string        `json:"phone"`
	Email    string        `json:"email"`
}

type ServiceLineItem struct {
	ServiceID       string  `json:"service_id"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
	PricingOptionID string  `json:"pricing_option_id"`
}

// BookingDraft is the fully assembled, submission-ready record. Prices are
// denominated in Currency and already rounded for submission.
type BookingDraft struct {
	Reference          string            `json:"reference"`
	Contact            Contact           `json:"contact"`
	CountryID          string            `json:"country_id"`
	CountryName        string            `json:"country_name"`
	LocationID         string            `json:"location_id"`
	LocationName       string            `json:"location_name"`
	FlightTypeID       string            `json:"flight_type_id"`
	FlightTypeName     string            `json:"flight_type_name"`
	FlightDate         time.Time         `json:"flight_date"`
	Headcount          int               `json:"headcount"`
	Currency           Currency          `json:"currency"`
	PromoCode          string            `json:"promo_code,omitempty"`
	DiscountPercentage float64           `json:"discount_percentage"`
	BasePrice          float64           `json:"base_price"`
	ServicesTotal      float64           `json:"services_total"`
	TotalPrice         float64           `json:"total_price"`
	BookingSource      BookingSource     `json:"booking_source"`
	PilotID            string            `json:"pilot_id,omitempty"`
	CompanyID          string            `json:"company_id,omitempty"`
	ServiceLineItems   []ServiceLineItem `json:"service_line_items"`
	CreatedAt          time.Time         `json:"created_at"`
}
