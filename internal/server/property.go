package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"github.com/zamstay/zamstay/pkg/money"
)

type createPropertyRequest struct {
	OwnerID     string   `json:"owner_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	City        string   `json:"city"`
	Area        string   `json:"area"`
	Address     string   `json:"address"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	MaxGuests   int      `json:"max_guests"`
	Currency    string   `json:"currency"`
	PricePerNight int64  `json:"price_per_night"`
	Amenities   []string `json:"amenities"`
	Photos      []string `json:"photos"`
}

func (s *Server) CreateProperty(c *gin.Context) {
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), propertydomain.CreatePropertyRequest{
		OwnerID:     strings.TrimSpace(req.OwnerID),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Type:        propertydomain.PropertyType(strings.TrimSpace(req.Type)),
		City:        strings.TrimSpace(req.City),
		Area:        strings.TrimSpace(req.Area),
		Address:     strings.TrimSpace(req.Address),
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		MaxGuests:   req.MaxGuests,
		PricePerNight: money.Money{
			Currency: currency,
			Amount:   req.PricePerNight,
		},
		Amenities: req.Amenities,
		Photos:    req.Photos,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	var query struct {
		pagination.Pagination
		City         string `form:"city"`
		Type         string `form:"type"`
		MinNightly   string `form:"min_nightly"`
		MaxNightly   string `form:"max_nightly"`
		Guests       string `form:"guests"`
		VerifiedOnly string `form:"verified_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	minNightly, err := parseOptionalInt64(query.MinNightly)
	if err != nil {
		AbortWithError(c, newValidationError("min_nightly", "invalid_min_nightly", "invalid min_nightly"))
		return
	}
	maxNightly, err := parseOptionalInt64(query.MaxNightly)
	if err != nil {
		AbortWithError(c, newValidationError("max_nightly", "invalid_max_nightly", "invalid max_nightly"))
		return
	}
	guests, err := parseOptionalInt64(query.Guests)
	if err != nil {
		AbortWithError(c, newValidationError("guests", "invalid_guests", "invalid guests"))
		return
	}
	verifiedOnly, err := parseOptionalBool(query.VerifiedOnly)
	if err != nil {
		AbortWithError(c, newValidationError("verified_only", "invalid_verified_only", "invalid verified_only"))
		return
	}

	req := propertydomain.ListPropertyRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		City:      strings.TrimSpace(query.City),
		Type:      strings.TrimSpace(query.Type),
	}
	if minNightly != nil {
		req.MinNightly = *minNightly
	}
	if maxNightly != nil {
		req.MaxNightly = *maxNightly
	}
	if guests != nil {
		req.Guests = int(*guests)
	}
	if verifiedOnly != nil {
		req.VerifiedOnly = *verifiedOnly
	}

	resp, err := s.propertySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyByID(c *gin.Context) {
	resp, err := s.propertySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPropertyBySlug(c *gin.Context) {
	resp, err := s.propertySvc.GetBySlug(c.Request.Context(), strings.TrimSpace(c.Param("slug")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyProperty(c *gin.Context) {
	resp, err := s.propertySvc.SetVerified(c.Request.Context(), strings.TrimSpace(c.Param("id")), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateProperty(c *gin.Context) {
	resp, err := s.propertySvc.SetActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), true)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateProperty(c *gin.Context) {
	resp, err := s.propertySvc.SetActive(c.Request.Context(), strings.TrimSpace(c.Param("id")), false)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
