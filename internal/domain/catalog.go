package domain

import "errors"

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleKA Locale = "ka"
	LocaleRU Locale = "ru"
)

// LocalizedText maps a locale to a translated string.
type LocalizedText map[Locale]string

// Resolve picks the text for the requested locale, falling back to
// English, then Georgian, then the first non-empty entry.
func (t LocalizedText) Resolve(loc Locale) string {
	if v := t[loc]; v != "" {
		return v
	}
	if v := t[LocaleEN]; v != "" {
		return v
	}
	if v := t[LocaleKA]; v != "" {
		return v
	}
	for _, v := range t {
		if v != "" {
			return v
		}
	}
	return ""
}

type Currency string

const (
	CurrencyGEL Currency = "GEL"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency validates a raw currency code.
func ParseCurrency(raw string) (Currency, error) {
	switch Currency(raw) {
	case CurrencyGEL, CurrencyUSD, CurrencyEUR:
		return Currency(raw), nil
	}
	return "", errors.New("unsupported currency")
}

// PriceRecord is the shared multi-currency price of a flight type or service,
// independent of its localized text.
type PriceRecord struct {
	GEL float64 `json:"gel"`
	USD float64 `json:"usd"`
	EUR float64 `json:"eur"`
}

func (p PriceRecord) Amount(c Currency) float64 {
	switch c {
	case CurrencyUSD:
		return p.USD
	case CurrencyEUR:
		return p.EUR
	default:
		return p.GEL
	}
}

type Country struct {
	ID   string        `json:"id"`
	Name LocalizedText `json:"name"`
}

type Location struct {
	ID        string        `json:"id"`
	CountryID string        `json:"country_id"`
	Name      LocalizedText `json:"name"`
}

// FlightType is meaningful only within one location. It is valid for
// selection only when both its localized content and its shared price
// record resolved from the catalog.
type FlightType struct {
	ID          string       `json:"id"`
	LocationID  string       `json:"location_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Duration    string       `json:"duration"`
	Features    []string     `json:"features"`
	Price       *PriceRecord `json:"price"`
}

// AdditionalService is an a-la-carte extra offered at a location.
type AdditionalService struct {
	ServiceID       string      `json:"service_id"`
	Name            string      `json:"name"`
	UnitPrice       PriceRecord `json:"unit_price"`
	PricingOptionID string      `json:"pricing_option_id"`
}

// SelectedService is an AdditionalService admitted into the draft with a quantity.
type SelectedService struct {
	ServiceID       string      `json:"service_id"`
	Name            string      `json:"name"`
	Quantity        int         `json:"quantity"`
	UnitPrice       PriceRecord `json:"unit_price"`
	PricingOptionID string      `json:"pricing_option_id"`
}
