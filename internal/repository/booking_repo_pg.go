package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, draft *domain.BookingDraft) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, draft *domain.BookingDraft) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	lineItems, err := json.Marshal(draft.ServiceLineItems)
	if err != nil {
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings
		(reference, contact_method, full_name, phone, email,
		 country_id, location_id, flight_type_id, flight_date, headcount,
		 currency, promo_code, discount_percentage, base_price, services_total, total_price,
		 booking_source, pilot_id, company_id, service_line_items)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,NULLIF($18,''),NULLIF($19,''),$20)
		RETURNING created_at`,
		draft.Reference, draft.Contact.Method, draft.Contact.FullName, draft.Contact.Phone, draft.Contact.Email,
		draft.CountryID, draft.LocationID, draft.FlightTypeID, draft.FlightDate, draft.Headcount,
		draft.Currency, draft.PromoCode, draft.DiscountPercentage, draft.BasePrice, draft.ServicesTotal, draft.TotalPrice,
		draft.BookingSource, draft.PilotID, draft.CompanyID, lineItems).
		Scan(&draft.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
