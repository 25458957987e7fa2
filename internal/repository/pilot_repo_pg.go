package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
)

type PilotRepository interface {
	GetPilot(ctx context.Context, id string) (*domain.Pilot, error)
	ListVerifiedCompanyPilots(ctx context.Context, companyID string) ([]domain.Pilot, error)
}

type PGPilotRepository struct {
	db *pgxpool.Pool
}

func NewPilotRepository(db *pgxpool.Pool) PilotRepository {
	return &PGPilotRepository{db: db}
}

func (r *PGPilotRepository) GetPilot(ctx context.Context, id string) (*domain.Pilot, error) {
	row := r.db.QueryRow(ctx, `SELECT id, COALESCE(company_id, ''), verified FROM pilots WHERE id=$1`, id)
	var p domain.Pilot
	if err := row.Scan(&p.ID, &p.CompanyID, &p.Verified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	locs, err := r.pilotLocations(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.LocationIDs = locs
	return &p, nil
}

func (r *PGPilotRepository) ListVerifiedCompanyPilots(ctx context.Context, companyID string) ([]domain.Pilot, error) {
	rows, err := r.db.Query(ctx, `SELECT id, COALESCE(company_id, ''), verified FROM pilots WHERE company_id=$1 AND verified`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pilots := make([]domain.Pilot, 0)
	for rows.Next() {
		var p domain.Pilot
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Verified); err != nil {
			return nil, err
		}
		pilots = append(pilots, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range pilots {
		locs, err := r.pilotLocations(ctx, pilots[i].ID)
		if err != nil {
			return nil, err
		}
		pilots[i].LocationIDs = locs
	}
	return pilots, nil
}

func (r *PGPilotRepository) pilotLocations(ctx context.Context, pilotID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT location_id FROM pilot_locations WHERE pilot_id=$1`, pilotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ PilotRepository = (*PGPilotRepository)(nil)
