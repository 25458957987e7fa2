package catalog

import (
	"context"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
	"github.com/sirupsen/logrus"
)

// CatalogUseCase is the read-only accessor the booking engine sees. A failed
// fetch surfaces as an error and must never corrupt upstream selections;
// callers treat it as an empty list.
type CatalogUseCase interface {
	ListCountries(ctx context.Context) ([]domain.Country, error)
	ListLocations(ctx context.Context, countryID string) ([]domain.Location, error)
	ListFlightTypes(ctx context.Context, locationID string, locale domain.Locale) ([]domain.FlightType, error)
	ListServices(ctx context.Context, locationID, companyID string) ([]domain.AdditionalService, error)
}

type Cache interface {
	GetCountries(ctx context.Context) ([]domain.Country, error)
	SetCountries(ctx context.Context, countries []domain.Country) error
	GetLocations(ctx context.Context, countryID string) ([]domain.Location, error)
	SetLocations(ctx context.Context, countryID string, locations []domain.Location) error
	InvalidateCatalog(ctx context.Context) error
}

type CatalogService struct {
	repo          repository.CatalogRepository
	cache         Cache
	defaultLocale domain.Locale
	logger        *logrus.Logger
}

func NewCatalogService(repo repository.CatalogRepository, cache Cache, defaultLocale domain.Locale, logger *logrus.Logger) *CatalogService {
	if logger == nil {
		logger = logrus.New()
	}
	return &CatalogService{repo: repo, cache: cache, defaultLocale: defaultLocale, logger: logger}
}

func (s *CatalogService) ListCountries(ctx context.Context) ([]domain.Country, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCountries(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	countries, err := s.repo.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetCountries(ctx, countries)
	}
	return countries, nil
}

func (s *CatalogService) ListLocations(ctx context.Context, countryID string) ([]domain.Location, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetLocations(ctx, countryID); err == nil && cached != nil {
			return cached, nil
		}
	}

	locations, err := s.repo.ListLocations(ctx, countryID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetLocations(ctx, countryID, locations)
	}
	return locations, nil
}

// ListFlightTypes falls back to the default locale when the requested one has
// no rows, then drops any entry whose shared price record did not resolve. A
// flight type is selectable only when both its text and its price exist.
func (s *CatalogService) ListFlightTypes(ctx context.Context, locationID string, locale domain.Locale) ([]domain.FlightType, error) {
	types, err := s.repo.ListFlightTypes(ctx, locationID, locale)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 && locale != s.defaultLocale {
		types, err = s.repo.ListFlightTypes(ctx, locationID, s.defaultLocale)
		if err != nil {
			return nil, err
		}
	}

	valid := types[:0]
	for _, ft := range types {
		if ft.Name == "" || ft.Price == nil {
			s.logger.WithFields(logrus.Fields{
				"flight_type": ft.ID,
				"location":    locationID,
			}).Warn("skipping flight type with incomplete catalog data")
			continue
		}
		valid = append(valid, ft)
	}
	return valid, nil
}

func (s *CatalogService) ListServices(ctx context.Context, locationID, companyID string) ([]domain.AdditionalService, error) {
	return s.repo.ListServices(ctx, locationID, companyID)
}

// Refresh drops the cached lists and re-warms countries. The worker calls it
// on a timer so content edits eventually reach sessions without a deploy.
func (s *CatalogService) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		return err
	}
	countries, err := s.repo.ListCountries(ctx)
	if err != nil {
		return err
	}
	return s.cache.SetCountries(ctx, countries)
}

var _ CatalogUseCase = (*CatalogService)(nil)
