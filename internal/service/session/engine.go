package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/service/booking"
	"github.com/lipo541/paragliding-web-sub003/internal/service/catalog"
	"github.com/lipo541/paragliding-web-sub003/internal/service/promo"
	"github.com/lipo541/paragliding-web-sub003/internal/service/scope"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrUnknownCountry     = errors.New("unknown country")
	ErrUnknownLocation    = errors.New("unknown location")
	ErrLocationNotAllowed = errors.New("location not available for this booking")
	ErrUnknownFlightType  = errors.New("unknown flight type")
	ErrUnknownService     = errors.New("unknown service")
	ErrInvalidHeadcount   = errors.New("headcount must be at least 1")
	ErrInvalidQuantity    = errors.New("quantity must not be negative")
)

// EngineUseCase is what the transport layer sees: one imperative entry point
// per user interaction, each returning the settled session state.
type EngineUseCase interface {
	Create(ctx context.Context, direct scope.DirectContext, locale domain.Locale) (State, error)
	Get(id string) (State, error)
	SelectCountry(ctx context.Context, id, countryID string) (State, error)
	SelectLocation(ctx context.Context, id, locationID string) (State, error)
	SelectFlightType(ctx context.Context, id, flightTypeID string) (State, error)
	SetCurrency(ctx context.Context, id string, currency domain.Currency) (State, error)
	SetHeadcount(ctx context.Context, id string, n int) (State, error)
	SetFlightDate(ctx context.Context, id string, date time.Time) (State, error)
	SetService(ctx context.Context, id, serviceID string, quantity int) (State, error)
	SetContact(ctx context.Context, id string, contact domain.Contact) (State, error)
	AttachDirectContext(ctx context.Context, id string, direct scope.DirectContext) (State, error)
	RemoveDirectContext(ctx context.Context, id string) (State, error)
	ApplyPromo(ctx context.Context, id, rawCode string, authenticated bool) (State, error)
	RemovePromo(ctx context.Context, id string) (State, error)
	Submit(ctx context.Context, id string) (Outcome, error)
}

// Outcome is the result of a submit attempt. FieldErrors means the draft was
// never sent; Message carries a business rejection verbatim.
type Outcome struct {
	Success     bool                     `json:"success"`
	Reference   string                   `json:"reference,omitempty"`
	Message     string                   `json:"message,omitempty"`
	FieldErrors booking.ValidationErrors `json:"field_errors,omitempty"`
}

type liveSession struct {
	mu      sync.Mutex
	state   State
	touched time.Time
}

type Engine struct {
	catalog   catalog.CatalogUseCase
	scopes    *scope.Resolver
	validator *promo.Validator
	submitter booking.SubmissionService
	logger    *logrus.Logger

	defaultCurrency domain.Currency
	defaultLocale   domain.Locale
	idleTTL         time.Duration

	mu       sync.RWMutex
	sessions map[string]*liveSession
}

type EngineOption func(*Engine)

func WithIdleTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.idleTTL = ttl
	}
}

func WithDefaults(currency domain.Currency, locale domain.Locale) EngineOption {
	return func(e *Engine) {
		e.defaultCurrency = currency
		e.defaultLocale = locale
	}
}

func NewEngine(
	catalogSvc catalog.CatalogUseCase,
	scopes *scope.Resolver,
	validator *promo.Validator,
	submitter booking.SubmissionService,
	logger *logrus.Logger,
	opts ...EngineOption,
) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	e := &Engine{
		catalog:         catalogSvc,
		scopes:          scopes,
		validator:       validator,
		submitter:       submitter,
		logger:          logger,
		defaultCurrency: domain.CurrencyGEL,
		defaultLocale:   domain.LocaleEN,
		idleTTL:         30 * time.Minute,
		sessions:        make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Create(ctx context.Context, direct scope.DirectContext, locale domain.Locale) (State, error) {
	bookingScope := domain.PlatformScope()
	if direct.PilotID != "" || direct.CompanyID != "" {
		resolved, err := e.scopes.Resolve(ctx, direct)
		if err != nil {
			return State{}, err
		}
		bookingScope = resolved
	}
	if locale == "" {
		locale = e.defaultLocale
	}

	st := State{
		ID:        uuid.NewString(),
		Locale:    locale,
		Scope:     bookingScope,
		PilotID:   direct.PilotID,
		CompanyID: direct.CompanyID,
		Currency:  e.defaultCurrency,
		Headcount: 1,
		UpdatedAt: time.Now(),
	}

	countries, err := e.catalog.ListCountries(ctx)
	if err != nil {
		e.logger.Warnf("failed to load countries: %v", err)
		st = reduce(st, fetchFailed{notice: "failed to load countries"})
	} else {
		st = reduce(st, countriesLoaded{items: countries})
	}

	sess := &liveSession{state: st, touched: time.Now()}
	e.mu.Lock()
	e.sessions[st.ID] = sess
	e.mu.Unlock()

	return st, nil
}

func (e *Engine) Get(id string) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, nil
}

func (e *Engine) SelectCountry(ctx context.Context, id, countryID string) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	if len(sess.state.Countries) > 0 && sess.state.countryByID(countryID) == nil {
		st := sess.state
		sess.mu.Unlock()
		return st, ErrUnknownCountry
	}
	sess.state = reduce(sess.state, countrySelected{id: countryID})
	token := sess.state.locationsToken
	e.touch(sess)
	sess.mu.Unlock()

	items, err := e.catalog.ListLocations(ctx, countryID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		e.logger.Warnf("failed to load locations for country %s: %v", countryID, err)
		sess.state = reduce(sess.state, fetchFailed{notice: "failed to load locations"})
		return sess.state, nil
	}
	sess.state = reduce(sess.state, locationsLoaded{token: token, items: items})
	return sess.state, nil
}

func (e *Engine) SelectLocation(ctx context.Context, id, locationID string) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	if !sess.state.Scope.Allows(locationID) {
		st := sess.state
		sess.mu.Unlock()
		return st, ErrLocationNotAllowed
	}
	if len(sess.state.Locations) > 0 && sess.state.locationByID(locationID) == nil {
		st := sess.state
		sess.mu.Unlock()
		return st, ErrUnknownLocation
	}
	locale := sess.state.Locale
	companyID := sess.state.CompanyID
	sess.state = reduce(sess.state, locationSelected{id: locationID})
	ftToken := sess.state.flightTypesToken
	svcToken := sess.state.servicesToken
	e.touch(sess)
	sess.mu.Unlock()

	types, ftErr := e.catalog.ListFlightTypes(ctx, locationID, locale)
	services, svcErr := e.catalog.ListServices(ctx, locationID, companyID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if ftErr != nil {
		e.logger.Warnf("failed to load flight types for location %s: %v", locationID, ftErr)
		sess.state = reduce(sess.state, fetchFailed{notice: "failed to load flight types"})
	} else {
		sess.state = reduce(sess.state, flightTypesLoaded{token: ftToken, items: types})
	}
	if svcErr != nil {
		e.logger.Warnf("failed to load services for location %s: %v", locationID, svcErr)
		sess.state = reduce(sess.state, fetchFailed{notice: "failed to load services"})
	} else {
		sess.state = reduce(sess.state, servicesLoaded{token: svcToken, items: services})
	}
	return sess.state, nil
}

func (e *Engine) SelectFlightType(ctx context.Context, id, flightTypeID string) (State, error) {
	return e.update(id, func(st State) (State, error) {
		found := false
		for _, ft := range st.FlightTypes {
			if ft.ID == flightTypeID {
				found = true
				break
			}
		}
		if !found {
			return st, ErrUnknownFlightType
		}
		return reduce(st, flightTypeSelected{id: flightTypeID}), nil
	})
}

// SetCurrency re-reads the per-currency fields already on the selected
// entities; it never triggers a fetch.
func (e *Engine) SetCurrency(ctx context.Context, id string, currency domain.Currency) (State, error) {
	return e.update(id, func(st State) (State, error) {
		return reduce(st, currencySet{currency: currency}), nil
	})
}

func (e *Engine) SetHeadcount(ctx context.Context, id string, n int) (State, error) {
	return e.update(id, func(st State) (State, error) {
		if n < 1 {
			return st, ErrInvalidHeadcount
		}
		return reduce(st, headcountSet{n: n}), nil
	})
}

func (e *Engine) SetFlightDate(ctx context.Context, id string, date time.Time) (State, error) {
	return e.update(id, func(st State) (State, error) {
		return reduce(st, flightDateSet{date: date}), nil
	})
}

func (e *Engine) SetService(ctx context.Context, id, serviceID string, quantity int) (State, error) {
	return e.update(id, func(st State) (State, error) {
		if quantity < 0 {
			return st, ErrInvalidQuantity
		}
		for _, svc := range st.ServiceCatalog {
			if svc.ServiceID == serviceID {
				return reduce(st, serviceSet{svc: svc, qty: quantity}), nil
			}
		}
		return st, ErrUnknownService
	})
}

func (e *Engine) SetContact(ctx context.Context, id string, contact domain.Contact) (State, error) {
	return e.update(id, func(st State) (State, error) {
		return reduce(st, contactSet{contact: contact}), nil
	})
}

func (e *Engine) AttachDirectContext(ctx context.Context, id string, direct scope.DirectContext) (State, error) {
	resolved, err := e.scopes.Resolve(ctx, direct)
	if err != nil {
		return State{}, err
	}

	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	sess.state = reduce(sess.state, scopeChanged{scope: resolved, pilotID: direct.PilotID, companyID: direct.CompanyID})
	countryID := sess.state.CountryID
	token := sess.state.locationsToken
	e.touch(sess)
	sess.mu.Unlock()

	return e.reloadLocations(ctx, sess, countryID, token)
}

func (e *Engine) RemoveDirectContext(ctx context.Context, id string) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}

	sess.mu.Lock()
	sess.state = reduce(sess.state, scopeCleared{})
	countryID := sess.state.CountryID
	token := sess.state.locationsToken
	e.touch(sess)
	sess.mu.Unlock()

	return e.reloadLocations(ctx, sess, countryID, token)
}

// reloadLocations refreshes the location list after a scope change; the list
// loaded before the change was filtered for the old allowed set.
func (e *Engine) reloadLocations(ctx context.Context, sess *liveSession, countryID string, token uint64) (State, error) {
	if countryID == "" {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.state, nil
	}

	items, err := e.catalog.ListLocations(ctx, countryID)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		e.logger.Warnf("failed to reload locations for country %s: %v", countryID, err)
		sess.state = reduce(sess.state, fetchFailed{notice: "failed to load locations"})
		return sess.state, nil
	}
	sess.state = reduce(sess.state, locationsLoaded{token: token, items: items})
	return sess.state, nil
}

// ApplyPromo runs the validator and folds the verdict into the session. A
// rejection is session state, not a transport error; only a collaborator
// failure surfaces as the fetch notice.
func (e *Engine) ApplyPromo(ctx context.Context, id, rawCode string, authenticated bool) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}

	code := promo.Normalize(rawCode)

	sess.mu.Lock()
	if sess.state.Promo.Status == promo.StatusApplied {
		st := sess.state
		sess.mu.Unlock()
		return st, promo.ErrAlreadyApplied
	}
	sess.state = reduce(sess.state, promoChecking{code: code})
	e.touch(sess)
	sess.mu.Unlock()

	applied, verr := e.validator.Validate(ctx, rawCode, authenticated)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if verr != nil {
		if isPromoRejection(verr) {
			sess.state = reduce(sess.state, promoRejected{code: code, msg: verr.Error()})
			return sess.state, nil
		}
		e.logger.Warnf("promo lookup failed for code %s: %v", code, verr)
		sess.state = reduce(sess.state, promoRemoved{})
		sess.state = reduce(sess.state, fetchFailed{notice: "failed to verify promo code"})
		return sess.state, nil
	}
	sess.state = reduce(sess.state, promoApplied{code: applied.Code, pct: applied.DiscountPercentage})
	return sess.state, nil
}

func (e *Engine) RemovePromo(ctx context.Context, id string) (State, error) {
	return e.update(id, func(st State) (State, error) {
		return reduce(st, promoRemoved{}), nil
	})
}

func (e *Engine) Submit(ctx context.Context, id string) (Outcome, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return Outcome{}, err
	}

	sess.mu.Lock()
	input := draftInput(sess.state)
	e.touch(sess)
	sess.mu.Unlock()

	draft, fieldErrs := booking.Assemble(input)
	if fieldErrs != nil {
		return Outcome{FieldErrors: fieldErrs}, nil
	}

	result, err := e.submitter.Submit(ctx, draft)
	if err != nil {
		// transport failure: the draft and session survive for a retry
		return Outcome{}, err
	}
	if !result.Success {
		return Outcome{Success: false, Message: result.Error}, nil
	}

	sess.mu.Lock()
	sess.state = reduce(sess.state, submitted{})
	sess.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"reference": draft.Reference,
		"source":    draft.BookingSource,
		"total":     draft.TotalPrice,
		"currency":  draft.Currency,
	}).Info("booking submitted")

	return Outcome{Success: true, Reference: draft.Reference}, nil
}

// StartSweeper evicts sessions idle longer than the configured TTL. It
// returns immediately; the sweep stops when ctx is canceled.
func (e *Engine) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.sweep(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (e *Engine) sweep(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, sess := range e.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.touched)
		sess.mu.Unlock()
		if idle > e.idleTTL {
			delete(e.sessions, id)
		}
	}
}

func (e *Engine) lookup(id string) (*liveSession, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sess, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (e *Engine) update(id string, fn func(State) (State, error)) (State, error) {
	sess, err := e.lookup(id)
	if err != nil {
		return State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	next, err := fn(sess.state)
	if err != nil {
		return sess.state, err
	}
	sess.state = next
	e.touch(sess)
	return sess.state, nil
}

func (e *Engine) touch(sess *liveSession) {
	sess.touched = time.Now()
	sess.state.UpdatedAt = sess.touched
}

func draftInput(st State) booking.DraftInput {
	in := booking.DraftInput{
		Contact:      st.Contact,
		CountryID:    st.CountryID,
		LocationID:   st.LocationID,
		FlightTypeID: st.FlightTypeID,
		FlightDate:   st.FlightDate,
		Headcount:    st.Headcount,
		Currency:     st.Currency,
		Breakdown:    st.Breakdown,
		Source:       st.Scope.Mode,
		PilotID:      st.PilotID,
		CompanyID:    st.CompanyID,
		Services:     st.Services,
	}
	if c := st.countryByID(st.CountryID); c != nil {
		in.CountryName = c.Name.Resolve(st.Locale)
	}
	if l := st.locationByID(st.LocationID); l != nil {
		in.LocationName = l.Name.Resolve(st.Locale)
	}
	if ft := st.SelectedFlightType(); ft != nil {
		in.FlightTypeName = ft.Name
	}
	if st.Promo.Status == promo.StatusApplied {
		in.PromoCode = st.Promo.Code
		in.DiscountPercentage = st.Promo.DiscountPercentage
	}
	return in
}

func isPromoRejection(err error) bool {
	switch {
	case errors.Is(err, promo.ErrEmptyCode),
		errors.Is(err, promo.ErrRequiresAuth),
		errors.Is(err, promo.ErrInvalidCode),
		errors.Is(err, promo.ErrNotYetActive),
		errors.Is(err, promo.ErrExpired),
		errors.Is(err, promo.ErrLimitReached):
		return true
	}
	return false
}

var _ EngineUseCase = (*Engine)(nil)
