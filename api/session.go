package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/middleware"
	"github.com/lipo541/paragliding-web-sub003/internal/service/pricing"
	"github.com/lipo541/paragliding-web-sub003/internal/service/promo"
	"github.com/lipo541/paragliding-web-sub003/internal/service/scope"
	"github.com/lipo541/paragliding-web-sub003/internal/service/session"
)

type SessionHandler struct {
	engine session.EngineUseCase
}

type createSessionRequest struct {
	PilotID   string `json:"pilot_id"`
	CompanyID string `json:"company_id"`
	Locale    string `json:"locale"`
}

type idRequest struct {
	ID string `json:"id"`
}

type currencyRequest struct {
	Currency string `json:"currency"`
}

type headcountRequest struct {
	Headcount int `json:"headcount"`
}

type dateRequest struct {
	Date string `json:"date"`
}

type serviceRequest struct {
	Quantity int `json:"quantity"`
}

type contactRequest struct {
	Method   string `json:"method"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type directContextRequest struct {
	PilotID   string `json:"pilot_id"`
	CompanyID string `json:"company_id"`
}

type promoRequest struct {
	Code string `json:"code"`
}

type breakdownResponse struct {
	FlightSubtotal   float64 `json:"flight_subtotal"`
	ServicesSubtotal float64 `json:"services_subtotal"`
	DiscountAmount   float64 `json:"discount_amount"`
	Total            float64 `json:"total"`
}

type sessionResponse struct {
	ID             string                     `json:"id"`
	Mode           string                     `json:"mode"`
	CountryID      string                     `json:"country_id,omitempty"`
	LocationID     string                     `json:"location_id,omitempty"`
	FlightTypeID   string                     `json:"flight_type_id,omitempty"`
	Currency       string                     `json:"currency"`
	Headcount      int                        `json:"headcount"`
	FlightDate     string                     `json:"flight_date,omitempty"`
	Countries      []domain.Country           `json:"countries"`
	Locations      []domain.Location          `json:"locations"`
	FlightTypes    []domain.FlightType        `json:"flight_types"`
	ServiceCatalog []domain.AdditionalService `json:"service_catalog"`
	Services       []domain.SelectedService   `json:"services"`
	Contact        domain.Contact             `json:"contact"`
	Promo          promo.State                `json:"promo"`
	Breakdown      breakdownResponse          `json:"breakdown"`
	Notice         string                     `json:"notice,omitempty"`
}

func NewSessionHandler(engine session.EngineUseCase) *SessionHandler {
	return &SessionHandler{engine: engine}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/country", h.selectCountry)
	router.PUT("/:id/location", h.selectLocation)
	router.PUT("/:id/flight-type", h.selectFlightType)
	router.PUT("/:id/currency", h.setCurrency)
	router.PUT("/:id/headcount", h.setHeadcount)
	router.PUT("/:id/date", h.setDate)
	router.PUT("/:id/services/:serviceId", h.setService)
	router.PUT("/:id/contact", h.setContact)
	router.POST("/:id/direct", h.attachDirect)
	router.DELETE("/:id/direct", h.removeDirect)
	router.POST("/:id/promo", h.applyPromo)
	router.DELETE("/:id/promo", h.removePromo)
	router.POST("/:id/submit", h.submit)
}

func (h *SessionHandler) create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.engine.Create(c.Request.Context(), scope.DirectContext{
		PilotID:   req.PilotID,
		CompanyID: req.CompanyID,
	}, domain.Locale(req.Locale))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pilot or company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(state))
}

func (h *SessionHandler) get(c *gin.Context) {
	state, err := h.engine.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(state))
}

func (h *SessionHandler) selectCountry(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SelectCountry(c.Request.Context(), c.Param("id"), req.ID)
	h.respond(c, state, err)
}

func (h *SessionHandler) selectLocation(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SelectLocation(c.Request.Context(), c.Param("id"), req.ID)
	h.respond(c, state, err)
}

func (h *SessionHandler) selectFlightType(c *gin.Context) {
	var req idRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SelectFlightType(c.Request.Context(), c.Param("id"), req.ID)
	h.respond(c, state, err)
}

func (h *SessionHandler) setCurrency(c *gin.Context) {
	var req currencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SetCurrency(c.Request.Context(), c.Param("id"), currency)
	h.respond(c, state, err)
}

func (h *SessionHandler) setHeadcount(c *gin.Context) {
	var req headcountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SetHeadcount(c.Request.Context(), c.Param("id"), req.Headcount)
	h.respond(c, state, err)
}

func (h *SessionHandler) setDate(c *gin.Context) {
	var req dateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	state, err := h.engine.SetFlightDate(c.Request.Context(), c.Param("id"), date)
	h.respond(c, state, err)
}

func (h *SessionHandler) setService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SetService(c.Request.Context(), c.Param("id"), c.Param("serviceId"), req.Quantity)
	h.respond(c, state, err)
}

func (h *SessionHandler) setContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.SetContact(c.Request.Context(), c.Param("id"), domain.Contact{
		Method:   domain.ContactMethod(req.Method),
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	h.respond(c, state, err)
}

func (h *SessionHandler) attachDirect(c *gin.Context) {
	var req directContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	state, err := h.engine.AttachDirectContext(c.Request.Context(), c.Param("id"), scope.DirectContext{
		PilotID:   req.PilotID,
		CompanyID: req.CompanyID,
	})
	h.respond(c, state, err)
}

func (h *SessionHandler) removeDirect(c *gin.Context) {
	state, err := h.engine.RemoveDirectContext(c.Request.Context(), c.Param("id"))
	h.respond(c, state, err)
}

func (h *SessionHandler) applyPromo(c *gin.Context) {
	var req promoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, authenticated := middleware.Identity(c)
	state, err := h.engine.ApplyPromo(c.Request.Context(), c.Param("id"), req.Code, authenticated)
	h.respond(c, state, err)
}

func (h *SessionHandler) removePromo(c *gin.Context) {
	state, err := h.engine.RemovePromo(c.Request.Context(), c.Param("id"))
	h.respond(c, state, err)
}

func (h *SessionHandler) submit(c *gin.Context) {
	outcome, err := h.engine.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		// transport failure toward the submission collaborator; the draft survives
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if outcome.FieldErrors != nil {
		c.JSON(http.StatusUnprocessableEntity, outcome)
		return
	}
	if !outcome.Success {
		c.JSON(http.StatusConflict, outcome)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (h *SessionHandler) respond(c *gin.Context, state session.State, err error) {
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(state))
}

func toSessionResponse(state session.State) sessionResponse {
	resp := sessionResponse{
		ID:             state.ID,
		Mode:           string(state.Scope.Mode),
		CountryID:      state.CountryID,
		LocationID:     state.LocationID,
		FlightTypeID:   state.FlightTypeID,
		Currency:       string(state.Currency),
		Headcount:      state.Headcount,
		Countries:      state.Countries,
		Locations:      state.Locations,
		FlightTypes:    state.FlightTypes,
		ServiceCatalog: state.ServiceCatalog,
		Services:       state.Services,
		Contact:        state.Contact,
		Promo:          state.Promo,
		Notice:         state.Notice,
		Breakdown: breakdownResponse{
			FlightSubtotal:   state.Breakdown.FlightSubtotal,
			ServicesSubtotal: state.Breakdown.ServicesSubtotal,
			DiscountAmount:   state.Breakdown.DiscountAmount,
			// the total alone is rounded for display; internals stay exact
			Total: pricing.Round2(state.Breakdown.Total),
		},
	}
	if !state.FlightDate.IsZero() {
		resp.FlightDate = state.FlightDate.Format("2006-01-02")
	}
	return resp
}
