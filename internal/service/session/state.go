package session

import (
	"time"

	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/service/pricing"
	"github.com/lipo541/paragliding-web-sub003/internal/service/promo"
)

// State is the whole cascade state of one booking session. Transitions go
// through reduce only, so every rule about clearing dependent levels lives in
// one place. The per-level tokens version the async catalog fetches: a fetch
// result is applied only while its token is still current.
type State struct {
	ID        string
	Locale    domain.Locale
	Scope     domain.BookingScope
	PilotID   string
	CompanyID string

	CountryID    string
	LocationID   string
	FlightTypeID string

	Currency   domain.Currency
	Headcount  int
	FlightDate time.Time
	Services   []domain.SelectedService
	Contact    domain.Contact

	Countries      []domain.Country
	Locations      []domain.Location
	FlightTypes    []domain.FlightType
	ServiceCatalog []domain.AdditionalService

	Promo     promo.State
	Breakdown pricing.Breakdown

	// Notice carries the last non-fatal fetch failure for the UI.
	Notice string

	locationsToken   uint64
	flightTypesToken uint64
	servicesToken    uint64

	UpdatedAt time.Time
}

// SelectedFlightType resolves the current selection against the loaded list.
func (s State) SelectedFlightType() *domain.FlightType {
	if s.FlightTypeID == "" {
		return nil
	}
	for i := range s.FlightTypes {
		if s.FlightTypes[i].ID == s.FlightTypeID {
			return &s.FlightTypes[i]
		}
	}
	return nil
}

func (s State) countryByID(id string) *domain.Country {
	for i := range s.Countries {
		if s.Countries[i].ID == id {
			return &s.Countries[i]
		}
	}
	return nil
}

func (s State) locationByID(id string) *domain.Location {
	for i := range s.Locations {
		if s.Locations[i].ID == id {
			return &s.Locations[i]
		}
	}
	return nil
}

type event interface {
	isEvent()
}

type countriesLoaded struct{ items []domain.Country }

type countrySelected struct{ id string }

type locationSelected struct{ id string }

type flightTypeSelected struct{ id string }

type currencySet struct{ currency domain.Currency }

type headcountSet struct{ n int }

type flightDateSet struct{ date time.Time }

type serviceSet struct {
	svc domain.AdditionalService
	qty int
}

type contactSet struct{ contact domain.Contact }

type scopeChanged struct {
	scope     domain.BookingScope
	pilotID   string
	companyID string
}

type scopeCleared struct{}

type locationsLoaded struct {
	token uint64
	items []domain.Location
}

type flightTypesLoaded struct {
	token uint64
	items []domain.FlightType
}

type servicesLoaded struct {
	token uint64
	items []domain.AdditionalService
}

type fetchFailed struct{ notice string }

type promoChecking struct{ code string }

type promoApplied struct {
	code string
	pct  float64
}

type promoRejected struct {
	code string
	msg  string
}

type promoRemoved struct{}

type submitted struct{}

func (countriesLoaded) isEvent()    {}
func (countrySelected) isEvent()    {}
func (locationSelected) isEvent()   {}
func (flightTypeSelected) isEvent() {}
func (currencySet) isEvent()        {}
func (headcountSet) isEvent()       {}
func (flightDateSet) isEvent()      {}
func (serviceSet) isEvent()         {}
func (contactSet) isEvent()         {}
func (scopeChanged) isEvent()       {}
func (scopeCleared) isEvent()       {}
func (locationsLoaded) isEvent()    {}
func (flightTypesLoaded) isEvent()  {}
func (servicesLoaded) isEvent()     {}
func (fetchFailed) isEvent()        {}
func (promoChecking) isEvent()      {}
func (promoApplied) isEvent()       {}
func (promoRejected) isEvent()      {}
func (promoRemoved) isEvent()       {}
func (submitted) isEvent()          {}

// reduce is the state-transition function. It is pure: the engine owns
// locking and effects, reduce owns the cascade rules. Setting a level clears
// everything below it; a late fetch result with a stale token is a no-op.
func reduce(s State, ev event) State {
	switch e := ev.(type) {
	case countriesLoaded:
		s.Countries = e.items
		s.Notice = ""

	case countrySelected:
		if s.CountryID != e.id {
			s.CountryID = e.id
			s = clearLocationLevel(s)
		}
		s.locationsToken++
		s.Notice = ""

	case locationSelected:
		if s.LocationID != e.id {
			s.LocationID = e.id
			s = clearFlightTypeLevel(s)
			s = clearServiceLevel(s)
		}
		s.flightTypesToken++
		s.servicesToken++
		s.Notice = ""

	case flightTypeSelected:
		s.FlightTypeID = e.id

	case currencySet:
		s.Currency = e.currency

	case headcountSet:
		s.Headcount = e.n

	case flightDateSet:
		s.FlightDate = e.date

	case serviceSet:
		s.Services = setService(s.Services, e.svc, e.qty)

	case contactSet:
		s.Contact = e.contact

	case scopeChanged:
		s.Scope = e.scope
		s.PilotID = e.pilotID
		s.CompanyID = e.companyID
		s.Locations = filterAllowed(s.Locations, s.Scope)
		s = revalidateLocation(s)
		// the loaded list was filtered for the old scope; invalidate it
		s.locationsToken++

	case scopeCleared:
		s.Scope = domain.PlatformScope()
		s.PilotID = ""
		s.CompanyID = ""
		// country survives a context removal; location and below do not
		s = clearLocationSelection(s)
		s.locationsToken++

	case locationsLoaded:
		if e.token != s.locationsToken {
			return s
		}
		s.Locations = filterAllowed(e.items, s.Scope)
		s = revalidateLocation(s)

	case flightTypesLoaded:
		if e.token != s.flightTypesToken {
			return s
		}
		s.FlightTypes = e.items
		if s.SelectedFlightType() == nil {
			s.FlightTypeID = ""
		}

	case servicesLoaded:
		if e.token != s.servicesToken {
			return s
		}
		s.ServiceCatalog = e.items
		s.Services = intersectServices(s.Services, e.items)

	case fetchFailed:
		s.Notice = e.notice

	case promoChecking:
		s.Promo = promo.State{Code: e.code, Status: promo.StatusChecking}

	case promoApplied:
		s.Promo = promo.State{Code: e.code, Status: promo.StatusApplied, DiscountPercentage: e.pct}

	case promoRejected:
		s.Promo = promo.State{Code: e.code, Status: promo.StatusRejected, Error: e.msg}

	case promoRemoved:
		s.Promo = promo.State{}

	case submitted:
		// scope and context survive; selection and contact reset for the next booking
		s.CountryID = ""
		s = clearLocationLevel(s)
		s.Contact = domain.Contact{}
		s.FlightDate = time.Time{}
		s.Headcount = 1
		s.Promo = promo.State{}
	}

	return recompute(s)
}

func clearLocationLevel(s State) State {
	s.LocationID = ""
	s.Locations = nil
	s = clearFlightTypeLevel(s)
	return clearServiceLevel(s)
}

func clearLocationSelection(s State) State {
	s.LocationID = ""
	s = clearFlightTypeLevel(s)
	return clearServiceLevel(s)
}

func clearFlightTypeLevel(s State) State {
	s.FlightTypeID = ""
	s.FlightTypes = nil
	return s
}

func clearServiceLevel(s State) State {
	s.Services = nil
	s.ServiceCatalog = nil
	return s
}

// revalidateLocation drops the selected location when it no longer belongs to
// the country or fell outside the allowed set, taking the flight type with it.
func revalidateLocation(s State) State {
	if s.LocationID == "" {
		return s
	}
	loc := s.locationByID(s.LocationID)
	valid := loc != nil && loc.CountryID == s.CountryID && s.Scope.Allows(s.LocationID)
	if s.Locations == nil {
		// list not loaded yet; only the scope predicate can be checked
		valid = s.Scope.Allows(s.LocationID)
	}
	if !valid {
		s = clearLocationSelection(s)
	}
	return s
}

func filterAllowed(items []domain.Location, scope domain.BookingScope) []domain.Location {
	if scope.AllowedLocationIDs == nil {
		return items
	}
	allowed := make([]domain.Location, 0, len(items))
	for _, l := range items {
		if scope.Allows(l.ID) {
			allowed = append(allowed, l)
		}
	}
	return allowed
}

func setService(selected []domain.SelectedService, svc domain.AdditionalService, qty int) []domain.SelectedService {
	out := make([]domain.SelectedService, 0, len(selected)+1)
	for _, s := range selected {
		if s.ServiceID != svc.ServiceID {
			out = append(out, s)
		}
	}
	if qty >= 1 {
		out = append(out, domain.SelectedService{
			ServiceID:       svc.ServiceID,
			Name:            svc.Name,
			Quantity:        qty,
			UnitPrice:       svc.UnitPrice,
			PricingOptionID: svc.PricingOptionID,
		})
	}
	return out
}

func intersectServices(selected []domain.SelectedService, catalog []domain.AdditionalService) []domain.SelectedService {
	if len(selected) == 0 {
		return nil
	}
	known := make(map[string]struct{}, len(catalog))
	for _, s := range catalog {
		known[s.ServiceID] = struct{}{}
	}
	kept := make([]domain.SelectedService, 0, len(selected))
	for _, s := range selected {
		if _, ok := known[s.ServiceID]; ok {
			kept = append(kept, s)
		}
	}
	return kept
}

// recompute refreshes the derived breakdown after every transition. The
// equality check only skips the write; recomputation itself is idempotent.
func recompute(s State) State {
	var price *domain.PriceRecord
	if ft := s.SelectedFlightType(); ft != nil {
		price = ft.Price
	}
	var pct float64
	if s.Promo.Status == promo.StatusApplied {
		pct = s.Promo.DiscountPercentage
	}
	next := pricing.Calculate(price, s.Headcount, s.Services, s.Currency, pct)
	if next != s.Breakdown {
		s.Breakdown = next
	}
	return s
}
