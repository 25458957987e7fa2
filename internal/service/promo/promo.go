package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/repository"
)

// Rejection reasons, surfaced next to the promo field. None of them block
// booking submission; the booking simply proceeds without a discount.
var (
	ErrEmptyCode      = errors.New("enter a code")
	ErrRequiresAuth   = errors.New("promo codes require sign-in")
	ErrInvalidCode    = errors.New("invalid code")
	ErrNotYetActive   = errors.New("code is not yet active")
	ErrExpired        = errors.New("code has expired")
	ErrLimitReached   = errors.New("code usage limit reached")
	ErrAlreadyApplied = errors.New("remove the applied code first")
)

type Status string

const (
	StatusEmpty    Status = ""
	StatusChecking Status = "checking"
	StatusApplied  Status = "applied"
	StatusRejected Status = "rejected"
)

// State is the promo slice of a booking session.
type State struct {
	Code               string  `json:"code"`
	Status             Status  `json:"status"`
	DiscountPercentage float64 `json:"discount_percentage"`
	Error              string  `json:"error,omitempty"`
}

// Guard de-duplicates concurrent checks of the same code. Optional.
type Guard interface {
	AcquireCodeCheck(ctx context.Context, code string, ttl time.Duration) (bool, error)
	ReleaseCodeCheck(ctx context.Context, code string) error
}

type Validator struct {
	repo     repository.PromoRepository
	guard    Guard
	checkTTL time.Duration
	now      func() time.Time
}

type ValidatorOption func(*Validator)

func WithGuard(guard Guard, ttl time.Duration) ValidatorOption {
	return func(v *Validator) {
		v.guard = guard
		v.checkTTL = ttl
	}
}

// WithClock replaces the time source, for temporal-boundary tests.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.now = now
	}
}

func NewValidator(repo repository.PromoRepository, opts ...ValidatorOption) *Validator {
	v := &Validator{repo: repo, now: time.Now, checkTTL: 10 * time.Second}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Normalize trims and uppercases a raw code.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Validate runs the check chain and short-circuits on the first failure:
// non-empty, authenticated, known and active, inside the validity window,
// under the usage cap. The boundary is inclusive at now on both ends.
// Usage is NOT consumed here; that happens on confirmed booking.
func (v *Validator) Validate(ctx context.Context, rawCode string, authenticated bool) (*domain.PromoCode, error) {
	code := Normalize(rawCode)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if !authenticated {
		return nil, ErrRequiresAuth
	}

	if v.guard != nil {
		if ok, err := v.guard.AcquireCodeCheck(ctx, code, v.checkTTL); err == nil && ok {
			defer func() { _ = v.guard.ReleaseCodeCheck(ctx, code) }()
		}
	}

	promo, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if !promo.IsActive {
		return nil, ErrInvalidCode
	}

	now := v.now()
	if promo.ValidFrom != nil && now.Before(*promo.ValidFrom) {
		return nil, ErrNotYetActive
	}
	if promo.ValidUntil != nil && now.After(*promo.ValidUntil) {
		return nil, ErrExpired
	}

	if promo.UsageLimit != nil && promo.UsageCount >= *promo.UsageLimit {
		return nil, ErrLimitReached
	}

	return promo, nil
}
