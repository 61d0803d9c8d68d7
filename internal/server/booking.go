package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"github.com/zamstay/zamstay/pkg/money"
)

type createBookingRequest struct {
	PropertyID    string `json:"property_id"`
	GuestID       string `json:"guest_id"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	GuestCount    int    `json:"guest_count"`
	ExpectedTotal *int64 `json:"expected_total"`
	Currency      string `json:"currency"`
}

func (s *Server) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	checkIn, err := parseStayDate(req.CheckIn)
	if err != nil {
		AbortWithError(c, newValidationError("check_in", "invalid_check_in", "invalid check_in"))
		return
	}
	checkOut, err := parseStayDate(req.CheckOut)
	if err != nil {
		AbortWithError(c, newValidationError("check_out", "invalid_check_out", "invalid check_out"))
		return
	}

	createReq := bookingdomain.CreateBookingRequest{
		PropertyID: strings.TrimSpace(req.PropertyID),
		GuestID:    strings.TrimSpace(req.GuestID),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	}
	if req.ExpectedTotal != nil {
		currency := strings.ToUpper(strings.TrimSpace(req.Currency))
		if currency == "" {
			currency = s.cfg.DefaultCurrency
		}
		createReq.ExpectedTotal = &money.Money{
			Currency: currency,
			Amount:   *req.ExpectedTotal,
		}
	}

	resp, err := s.bookingSvc.Create(c.Request.Context(), createReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBookingByID(c *gin.Context) {
	resp, err := s.bookingSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBookingByReference(c *gin.Context) {
	resp, err := s.bookingSvc.GetByReference(c.Request.Context(), strings.TrimSpace(c.Param("reference")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBookingStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateBookingStatus(c *gin.Context) {
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.bookingSvc.UpdateStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(req.Status))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBookingsByOwner(c *gin.Context) {
	s.listBookings(c, func(req bookingdomain.ListBookingRequest) (bookingdomain.ListBookingResponse, error) {
		return s.bookingSvc.ListByOwner(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	})
}

func (s *Server) ListBookingsByProperty(c *gin.Context) {
	s.listBookings(c, func(req bookingdomain.ListBookingRequest) (bookingdomain.ListBookingResponse, error) {
		return s.bookingSvc.ListByProperty(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	})
}

func (s *Server) listBookings(c *gin.Context, fetch func(bookingdomain.ListBookingRequest) (bookingdomain.ListBookingResponse, error)) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := fetch(bookingdomain.ListBookingRequest{
		PageToken: query.PageToken,
		PageSize:  query.PageSize,
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CheckAvailability(c *gin.Context) {
	checkIn, err := parseStayDate(c.Query("check_in"))
	if err != nil {
		AbortWithError(c, newValidationError("check_in", "invalid_check_in", "invalid check_in"))
		return
	}
	checkOut, err := parseStayDate(c.Query("check_out"))
	if err != nil {
		AbortWithError(c, newValidationError("check_out", "invalid_check_out", "invalid check_out"))
		return
	}

	resp, err := s.bookingSvc.CheckAvailability(c.Request.Context(), bookingdomain.AvailabilityRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PriceQuote(c *gin.Context) {
	checkIn, err := parseStayDate(c.Query("check_in"))
	if err != nil {
		AbortWithError(c, newValidationError("check_in", "invalid_check_in", "invalid check_in"))
		return
	}
	checkOut, err := parseStayDate(c.Query("check_out"))
	if err != nil {
		AbortWithError(c, newValidationError("check_out", "invalid_check_out", "invalid check_out"))
		return
	}

	resp, err := s.bookingSvc.PriceQuote(c.Request.Context(), bookingdomain.QuoteRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
