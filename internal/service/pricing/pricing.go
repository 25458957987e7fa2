package pricing

import (
	"math"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
)

// Breakdown is derived, never stored. Fields stay unrounded so repeated
// recomputation cannot compound rounding error; Round2 is applied to the
// total only at the display and submission boundaries.
type Breakdown struct {
	FlightSubtotal   float64 `json:"flight_subtotal"`
	ServicesSubtotal float64 `json:"services_subtotal"`
	DiscountAmount   float64 `json:"discount_amount"`
	Total            float64 `json:"total"`
}

// Calculate prices a selection in the given currency. A nil price record
// (nothing selected yet) contributes zero. Switching currency re-reads the
// per-currency fields already on the entities; it never fetches.
func Calculate(price *domain.PriceRecord, headcount int, services []domain.SelectedService, currency domain.Currency, discountPercentage float64) Breakdown {
	var unit float64
	if price != nil {
		unit = price.Amount(currency)
	}
	flightSubtotal := unit * float64(headcount)

	var servicesSubtotal float64
	for _, svc := range services {
		servicesSubtotal += svc.UnitPrice.Amount(currency) * float64(svc.Quantity)
	}

	preDiscount := flightSubtotal + servicesSubtotal
	discountAmount := preDiscount * (discountPercentage / 100)

	return Breakdown{
		FlightSubtotal:   flightSubtotal,
		ServicesSubtotal: servicesSubtotal,
		DiscountAmount:   discountAmount,
		Total:            preDiscount - discountAmount,
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
