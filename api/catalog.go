package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lipo541/paragliding-web-sub003/internal/domain"
	"github.com/lipo541/paragliding-web-sub003/internal/service/catalog"
)

type CatalogHandler struct {
	service catalog.CatalogUseCase
}

type countryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type locationResponse struct {
	ID        string `json:"id"`
	CountryID string `json:"country_id"`
	Name      string `json:"name"`
}

func NewCatalogHandler(service catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/countries", h.countries)
	router.GET("/locations", h.locations)
	router.GET("/flight-types", h.flightTypes)
	router.GET("/services", h.services)
}

func (h *CatalogHandler) countries(c *gin.Context) {
	locale := requestLocale(c)
	countries, err := h.service.ListCountries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]countryResponse, 0, len(countries))
	for _, country := range countries {
		resp = append(resp, countryResponse{ID: country.ID, Name: country.Name.Resolve(locale)})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) locations(c *gin.Context) {
	countryID := c.Query("country_id")
	if countryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "country_id is required"})
		return
	}
	locale := requestLocale(c)

	locations, err := h.service.ListLocations(c.Request.Context(), countryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]locationResponse, 0, len(locations))
	for _, loc := range locations {
		resp = append(resp, locationResponse{ID: loc.ID, CountryID: loc.CountryID, Name: loc.Name.Resolve(locale)})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CatalogHandler) flightTypes(c *gin.Context) {
	locationID := c.Query("location_id")
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id is required"})
		return
	}

	types, err := h.service.ListFlightTypes(c.Request.Context(), locationID, requestLocale(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, types)
}

func (h *CatalogHandler) services(c *gin.Context) {
	locationID := c.Query("location_id")
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id is required"})
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), locationID, c.Query("company_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services)
}

func requestLocale(c *gin.Context) domain.Locale {
	switch c.Query("locale") {
	case "ka":
		return domain.LocaleKA
	case "ru":
		return domain.LocaleRU
	default:
		return domain.LocaleEN
	}
}
