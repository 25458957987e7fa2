package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/service/pricing"
)

// ValidationErrors maps a field name to its inline message. A non-empty map
// blocks submission; nothing is sent to the submission collaborator.
type ValidationErrors map[string]string

// DraftInput is the flattened session snapshot the assembler works from.
type DraftInput struct {
	Contact            domain.Contact
	CountryID          string
	CountryName        string
	LocationID         string
	LocationName       string
	FlightTypeID       string
	FlightTypeName     string
	FlightDate         time.Time
	Headcount          int
	Currency           domain.Currency
	PromoCode          string
	DiscountPercentage float64
	Breakdown          pricing.Breakdown
	Source             domain.BookingSource
	PilotID            string
	CompanyID          string
	Services           []domain.SelectedService
}

// Validate checks the pre-submission invariants and reports every violation
// at once, keyed by field.
func Validate(in DraftInput) ValidationErrors {
	errs := ValidationErrors{}
	if in.Contact.Method == "" {
		errs["contact_method"] = "select a contact method"
	}
	if in.CountryID == "" {
		errs["country"] = "select a country"
	}
	if in.LocationID == "" {
		errs["location"] = "select a location"
	}
	if in.FlightTypeID == "" {
		errs["flight_type"] = "select a flight type"
	}
	if in.FlightDate.IsZero() {
		errs["flight_date"] = "select a date"
	}
	if in.Headcount < 1 {
		errs["headcount"] = "select at least one person"
	}
	if in.Contact.FullName == "" {
		errs["full_name"] = "full name is required"
	}
	if in.Contact.Phone == "" {
		errs["phone"] = "phone is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Assemble builds the submittable draft. Prices are rounded here, at the
// submission boundary; the session keeps them unrounded.
func Assemble(in DraftInput) (*domain.BookingDraft, ValidationErrors) {
	if errs := Validate(in); errs != nil {
		return nil, errs
	}

	lineItems := make([]domain.ServiceLineItem, 0, len(in.Services))
	for _, svc := range in.Services {
		lineItems = append(lineItems, domain.ServiceLineItem{
			ServiceID:       svc.ServiceID,
			Name:            svc.Name,
			Quantity:        svc.Quantity,
			UnitPrice:       pricing.Round2(svc.UnitPrice.Amount(in.Currency)),
			PricingOptionID: svc.PricingOptionID,
		})
	}

	return &domain.BookingDraft{
		Reference:          uuid.NewString(),
		Contact:            in.Contact,
		CountryID:          in.CountryID,
		CountryName:        in.CountryName,
		LocationID:         in.LocationID,
		LocationName:       in.LocationName,
		FlightTypeID:       in.FlightTypeID,
		FlightTypeName:     in.FlightTypeName,
		FlightDate:         in.FlightDate,
		Headcount:          in.Headcount,
		Currency:           in.Currency,
		PromoCode:          in.PromoCode,
		DiscountPercentage: in.DiscountPercentage,
		BasePrice:          pricing.Round2(in.Breakdown.FlightSubtotal),
		ServicesTotal:      pricing.Round2(in.Breakdown.ServicesSubtotal),
		TotalPrice:         pricing.Round2(in.Breakdown.Total),
		BookingSource:      in.Source,
		PilotID:            in.PilotID,
		CompanyID:          in.CompanyID,
		ServiceLineItems:   lineItems,
	}, nil
}
