package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListCountries(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Country), args.Error(1)
}

func (m *MockCatalogRepository) ListLocations(ctx context.Context, countryID string) ([]domain.Location, error) {
	args := m.Called(ctx, countryID)
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockCatalogRepository) ListFlightTypes(ctx context.Context, locationID string, locale domain.Locale) ([]domain.FlightType, error) {
	args := m.Called(ctx, locationID, locale)
	return args.Get(0).([]domain.FlightType), args.Error(1)
}

func (m *MockCatalogRepository) ListServices(ctx context.Context, locationID, companyID string) ([]domain.AdditionalService, error) {
	args := m.Called(ctx, locationID, companyID)
	return args.Get(0).([]domain.AdditionalService), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCountries(ctx context.Context) ([]domain.Country, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Country), args.Error(1)
}

func (m *MockCache) SetCountries(ctx context.Context, countries []domain.Country) error {
	args := m.Called(ctx, countries)
	return args.Error(0)
}

func (m *MockCache) GetLocations(ctx context.Context, countryID string) ([]domain.Location, error) {
	args := m.Called(ctx, countryID)
	return args.Get(0).([]domain.Location), args.Error(1)
}

func (m *MockCache) SetLocations(ctx context.Context, countryID string, locations []domain.Location) error {
	args := m.Called(ctx, countryID, locations)
	return args.Error(0)
}

func (m *MockCache) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var georgia = domain.Country{ID: "ge", Name: domain.LocalizedText{domain.LocaleEN: "Georgia", domain.LocaleKA: "საქართველო"}}

func TestListCountries_CacheMiss(t *testing.T) {
	repo := &MockCatalogRepository{}
	cache := &MockCache{}
	svc := NewCatalogService(repo, cache, domain.LocaleEN, nil)

	ctx := context.Background()
	countries := []domain.Country{georgia}

	cache.On("GetCountries", ctx).Return(([]domain.Country)(nil), nil).Once()
	repo.On("ListCountries", ctx).Return(countries, nil).Once()
	cache.On("SetCountries", ctx, countries).Return(nil).Once()

	result, err := svc.ListCountries(ctx)

	assert.NoError(t, err)
	assert.Equal(t, countries, result)
	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestListCountries_CacheHit(t *testing.T) {
	repo := &MockCatalogRepository{}
	cache := &MockCache{}
	svc := NewCatalogService(repo, cache, domain.LocaleEN, nil)

	ctx := context.Background()
	countries := []domain.Country{georgia}

	cache.On("GetCountries", ctx).Return(countries, nil).Once()

	result, err := svc.ListCountries(ctx)

	assert.NoError(t, err)
	assert.Equal(t, countries, result)
	repo.AssertNotCalled(t, "ListCountries")
}

func TestListLocations_NoCache(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, nil, domain.LocaleEN, nil)

	ctx := context.Background()
	locations := []domain.Location{{ID: "gudauri", CountryID: "ge"}}

	repo.On("ListLocations", ctx, "ge").Return(locations, nil).Once()

	result, err := svc.ListLocations(ctx, "ge")

	assert.NoError(t, err)
	assert.Equal(t, locations, result)
}

func TestListLocations_RepositoryError(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, nil, domain.LocaleEN, nil)

	ctx := context.Background()
	expectedErr := errors.New("database error")
	repo.On("ListLocations", ctx, "ge").Return([]domain.Location{}, expectedErr).Once()

	result, err := svc.ListLocations(ctx, "ge")

	assert.Error(t, err)
	assert.Nil(t, result)
}

// The requested locale falls back to the default when it has no rows.
func TestListFlightTypes_LocaleFallback(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, nil, domain.LocaleEN, nil)

	ctx := context.Background()
	english := []domain.FlightType{
		{ID: "tandem", LocationID: "gudauri", Name: "Tandem Flight", Price: &domain.PriceRecord{GEL: 200}},
	}

	repo.On("ListFlightTypes", ctx, "gudauri", domain.LocaleRU).Return([]domain.FlightType{}, nil).Once()
	repo.On("ListFlightTypes", ctx, "gudauri", domain.LocaleEN).Return(english, nil).Once()

	result, err := svc.ListFlightTypes(ctx, "gudauri", domain.LocaleRU)

	assert.NoError(t, err)
	assert.Equal(t, english, result)
	repo.AssertExpectations(t)
}

// A flight type is selectable only when both its text and price resolved.
func TestListFlightTypes_DropsIncompleteEntries(t *testing.T) {
	repo := &MockCatalogRepository{}
	svc := NewCatalogService(repo, nil, domain.LocaleEN, nil)

	ctx := context.Background()
	types := []domain.FlightType{
		{ID: "tandem", LocationID: "gudauri", Name: "Tandem Flight", Price: &domain.PriceRecord{GEL: 200}},
		{ID: "acro", LocationID: "gudauri", Name: "Acro Flight", Price: nil},
		{ID: "long", LocationID: "gudauri", Name: "", Price: &domain.PriceRecord{GEL: 300}},
	}
	repo.On("ListFlightTypes", ctx, "gudauri", domain.LocaleEN).Return(types, nil).Once()

	result, err := svc.ListFlightTypes(ctx, "gudauri", domain.LocaleEN)

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "tandem", result[0].ID)
}

func TestRefresh(t *testing.T) {
	repo := &MockCatalogRepository{}
	cache := &MockCache{}
	svc := NewCatalogService(repo, cache, domain.LocaleEN, nil)

	ctx := context.Background()
	countries := []domain.Country{georgia}

	cache.On("InvalidateCatalog", ctx).Return(nil).Once()
	repo.On("ListCountries", ctx).Return(countries, nil).Once()
	cache.On("SetCountries", ctx, countries).Return(nil).Once()

	assert.NoError(t, svc.Refresh(ctx))
	cache.AssertExpectations(t)
}

func TestLocalizedText_FallbackChain(t *testing.T) {
	name := domain.LocalizedText{domain.LocaleKA: "გუდაური"}
	assert.Equal(t, "გუდაური", name.Resolve(domain.LocaleRU))

	name = domain.LocalizedText{domain.LocaleEN: "Gudauri", domain.LocaleKA: "გუდაური"}
	assert.Equal(t, "Gudauri", name.Resolve(domain.LocaleRU))
	assert.Equal(t, "გუდაური", name.Resolve(domain.LocaleKA))

	assert.Equal(t, "", domain.LocalizedText{}.Resolve(domain.LocaleEN))
}
