package scope

import (
	"context"
	"testing"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPilotRepository struct {
	mock.Mock
}

func (m *MockPilotRepository) GetPilot(ctx context.Context, id string) (*domain.Pilot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pilot), args.Error(1)
}

func (m *MockPilotRepository) ListVerifiedCompanyPilots(ctx context.Context, companyID string) ([]domain.Pilot, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.Pilot), args.Error(1)
}

func TestResolve_Platform(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	s, err := r.Resolve(context.Background(), DirectContext{})

	assert.NoError(t, err)
	assert.Equal(t, domain.SourcePlatform, s.Mode)
	assert.Nil(t, s.AllowedLocationIDs)
	assert.True(t, s.Allows("any-location"))
	repo.AssertNotCalled(t, "GetPilot")
}

func TestResolve_PilotDirect(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	ctx := context.Background()
	pilot := &domain.Pilot{ID: "p1", LocationIDs: []string{"gudauri", "kazbegi"}, Verified: true}
	repo.On("GetPilot", ctx, "p1").Return(pilot, nil).Once()

	s, err := r.Resolve(ctx, DirectContext{PilotID: "p1"})

	assert.NoError(t, err)
	assert.Equal(t, domain.SourcePilotDirect, s.Mode)
	assert.True(t, s.Allows("gudauri"))
	assert.True(t, s.Allows("kazbegi"))
	assert.False(t, s.Allows("tbilisi"))
	repo.AssertExpectations(t)
}

func TestResolve_PilotNotFound(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	ctx := context.Background()
	repo.On("GetPilot", ctx, "ghost").Return(nil, domain.ErrNotFound).Once()

	_, err := r.Resolve(ctx, DirectContext{PilotID: "ghost"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Company scope is the union of its verified pilots' locations.
func TestResolve_CompanyDirect(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	ctx := context.Background()
	pilots := []domain.Pilot{
		{ID: "p1", CompanyID: "c1", LocationIDs: []string{"gudauri"}, Verified: true},
		{ID: "p2", CompanyID: "c1", LocationIDs: []string{"gudauri", "kazbegi"}, Verified: true},
	}
	repo.On("ListVerifiedCompanyPilots", ctx, "c1").Return(pilots, nil).Once()

	s, err := r.Resolve(ctx, DirectContext{CompanyID: "c1"})

	assert.NoError(t, err)
	assert.Equal(t, domain.SourceCompanyDirect, s.Mode)
	assert.Len(t, s.AllowedLocationIDs, 2)
	assert.True(t, s.Allows("gudauri"))
	assert.True(t, s.Allows("kazbegi"))
	assert.False(t, s.Allows("tbilisi"))
}

func TestResolve_CompanyWithoutPilots(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	ctx := context.Background()
	repo.On("ListVerifiedCompanyPilots", ctx, "c2").Return([]domain.Pilot{}, nil).Once()

	s, err := r.Resolve(ctx, DirectContext{CompanyID: "c2"})

	assert.NoError(t, err)
	assert.Equal(t, domain.SourceCompanyDirect, s.Mode)
	assert.NotNil(t, s.AllowedLocationIDs)
	assert.False(t, s.Allows("gudauri"))
}

// A pilot context wins when both identifiers are present.
func TestResolve_PilotTakesPrecedence(t *testing.T) {
	repo := &MockPilotRepository{}
	r := NewResolver(repo)

	ctx := context.Background()
	pilot := &domain.Pilot{ID: "p1", CompanyID: "c1", LocationIDs: []string{"gudauri"}}
	repo.On("GetPilot", ctx, "p1").Return(pilot, nil).Once()

	s, err := r.Resolve(ctx, DirectContext{PilotID: "p1", CompanyID: "c1"})

	assert.NoError(t, err)
	assert.Equal(t, domain.SourcePilotDirect, s.Mode)
	repo.AssertNotCalled(t, "ListVerifiedCompanyPilots")
}
