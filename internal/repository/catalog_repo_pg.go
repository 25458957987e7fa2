package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
)

// CatalogRepository is the read-only content catalog. Locations, flight types
// and services are reference data owned by the content side; this engine never
// writes them.
type CatalogRepository interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	ListLocations(ctx context.Context, countryID string) ([]domain.Location, error)
	ListFlightTypes(ctx context.Context, locationID string, locale domain.Locale) ([]domain.FlightType, error)
	ListServices(ctx context.Context, locationID, companyID string) ([]domain.AdditionalService, error)
}

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

func (r *PGCatalogRepository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name_en, name_ka, name_ru FROM countries ORDER BY name_en`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	countries := make([]domain.Country, 0)
	for rows.Next() {
		var c domain.Country
		var en, ka, ru string
		if err := rows.Scan(&c.ID, &en, &ka, &ru); err != nil {
			return nil, err
		}
		c.Name = domain.LocalizedText{domain.LocaleEN: en, domain.LocaleKA: ka, domain.LocaleRU: ru}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

func (r *PGCatalogRepository) ListLocations(ctx context.Context, countryID string) ([]domain.Location, error) {
	rows, err := r.db.Query(ctx, `SELECT id, country_id, name_en, name_ka, name_ru FROM locations WHERE country_id=$1 ORDER BY name_en`, countryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]domain.Location, 0)
	for rows.Next() {
		var l domain.Location
		var en, ka, ru string
		if err := rows.Scan(&l.ID, &l.CountryID, &en, &ka, &ru); err != nil {
			return nil, err
		}
		l.Name = domain.LocalizedText{domain.LocaleEN: en, domain.LocaleKA: ka, domain.LocaleRU: ru}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// ListFlightTypes returns entries for the requested locale only; a row joins
// its shared price record, so a flight type without one is simply absent.
func (r *PGCatalogRepository) ListFlightTypes(ctx context.Context, locationID string, locale domain.Locale) ([]domain.FlightType, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ft.id, ft.location_id, ftt.name, ftt.description, ftt.duration, ftt.features,
		       fp.gel, fp.usd, fp.eur
		FROM flight_types ft
		JOIN flight_type_translations ftt ON ftt.flight_type_id = ft.id AND ftt.locale = $2
		JOIN flight_prices fp ON fp.flight_type_id = ft.id
		WHERE ft.location_id = $1
		ORDER BY ftt.name`, locationID, string(locale))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := make([]domain.FlightType, 0)
	for rows.Next() {
		var ft domain.FlightType
		var price domain.PriceRecord
		if err := rows.Scan(&ft.ID, &ft.LocationID, &ft.Name, &ft.Description, &ft.Duration, &ft.Features,
			&price.GEL, &price.USD, &price.EUR); err != nil {
			return nil, err
		}
		ft.Price = &price
		types = append(types, ft)
	}
	return types, rows.Err()
}

// ListServices returns the extras offered at a location. Company-specific
// services are included only for that company; companyID may be empty.
func (r *PGCatalogRepository) ListServices(ctx context.Context, locationID, companyID string) ([]domain.AdditionalService, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price_gel, price_usd, price_eur, pricing_option_id
		FROM additional_services
		WHERE location_id = $1 AND (company_id IS NULL OR company_id = $2)
		ORDER BY name`, locationID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]domain.AdditionalService, 0)
	for rows.Next() {
		var s domain.AdditionalService
		if err := rows.Scan(&s.ServiceID, &s.Name, &s.UnitPrice.GEL, &s.UnitPrice.USD, &s.UnitPrice.EUR, &s.PricingOptionID); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
