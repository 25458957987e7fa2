package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
)

type PromoRepository interface {
	FindByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	IncrementUsage(ctx context.Context, code string) error
}

type PGPromoRepository struct {
	db *pgxpool.Pool
}

func NewPromoRepository(db *pgxpool.Pool) PromoRepository {
	return &PGPromoRepository{db: db}
}

func (r *PGPromoRepository) FindByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	row := r.db.QueryRow(ctx, `SELECT code, discount_percentage, is_active, valid_from, valid_until, usage_limit, usage_count FROM promo_codes WHERE code=$1`, code)
	var p domain.PromoCode
	if err := row.Scan(&p.Code, &p.DiscountPercentage, &p.IsActive, &p.ValidFrom, &p.ValidUntil, &p.UsageLimit, &p.UsageCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// IncrementUsage settles one use of a code. Called by the worker on a
// confirmed booking, never when the code is merely applied to a draft.
func (r *PGPromoRepository) IncrementUsage(ctx context.Context, code string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE promo_codes SET usage_count = usage_count + 1, updated_at = now() WHERE code=$1`, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ PromoRepository = (*PGPromoRepository)(nil)
