package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/zamstay/zamstay/internal/review/domain"
)

type createReviewRequest struct {
	BookingID string `json:"booking_id"`
	Score     int    `json:"score"`
	Comment   string `json:"comment"`
}

func (s *Server) CreateReview(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), reviewdomain.CreateReviewRequest{
		BookingID: strings.TrimSpace(req.BookingID),
		Score:     req.Score,
		Comment:   req.Comment,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReviewsByProperty(c *gin.Context) {
	resp, err := s.reviewSvc.ListByProperty(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
