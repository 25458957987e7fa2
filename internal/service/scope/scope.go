package scope

import (
	"context"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
)

// DirectContext identifies who initiated the booking when the visitor arrived
// through a pilot or company link. Both fields empty means a platform booking.
type DirectContext struct {
	PilotID   string
	CompanyID string
}

type Resolver struct {
	pilots repository.PilotRepository
}

func NewResolver(pilots repository.PilotRepository) *Resolver {
	return &Resolver{pilots: pilots}
}

// Resolve computes the allowed-location set and the booking-source
// classification for a direct-booking context. A pilot context wins over a
// company one when both are present.
func (r *Resolver) Resolve(ctx context.Context, direct DirectContext) (domain.BookingScope, error) {
	if direct.PilotID != "" {
		pilot, err := r.pilots.GetPilot(ctx, direct.PilotID)
		if err != nil {
			return domain.BookingScope{}, err
		}
		return domain.BookingScope{
			Mode:               domain.SourcePilotDirect,
			AllowedLocationIDs: locationSet(pilot.LocationIDs),
		}, nil
	}

	if direct.CompanyID != "" {
		pilots, err := r.pilots.ListVerifiedCompanyPilots(ctx, direct.CompanyID)
		if err != nil {
			return domain.BookingScope{}, err
		}
		allowed := make(map[string]struct{})
		for _, p := range pilots {
			for _, id := range p.LocationIDs {
				allowed[id] = struct{}{}
			}
		}
		return domain.BookingScope{
			Mode:               domain.SourceCompanyDirect,
			AllowedLocationIDs: allowed,
		}, nil
	}

	return domain.PlatformScope(), nil
}

func locationSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
