package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	bookingrepository "github.com/zamstay/zamstay/internal/booking/repository"
	bookingservice "github.com/zamstay/zamstay/internal/booking/service"
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	earningsservice "github.com/zamstay/zamstay/internal/earnings/service"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	propertyrepository "github.com/zamstay/zamstay/internal/property/repository"
	propertyservice "github.com/zamstay/zamstay/internal/property/service"
	reviewrepository "github.com/zamstay/zamstay/internal/review/repository"
	reviewservice "github.com/zamstay/zamstay/internal/review/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&propertydomain.Property{},
		&bookingdomain.Booking{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	cfg := config.Config{DefaultCurrency: "ZMW", HTTPPort: "8080"}
	bookingRepo := bookingrepository.Provide()
	propertyRepo := propertyrepository.Provide()

	properties := propertyservice.New(propertyservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  propertyRepo,
	})
	bookings := bookingservice.New(bookingservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Pricing:    config.NewStaticPricingHolder(config.DefaultPricingConfig()),
		Repo:       bookingRepo,
		Properties: properties,
	})
	earnings := earningsservice.New(earningsservice.Params{
		DB:       db,
		Log:      logger,
		Clock:    fake,
		Cfg:      cfg,
		Bookings: bookingRepo,
	})
	reviews := reviewservice.New(reviewservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Repo:       reviewrepository.Provide(),
		Bookings:   bookings,
		Properties: propertyRepo,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	return NewServer(ServerParams{
		Gin:         engine,
		Cfg:         cfg,
		PropertySvc: properties,
		BookingSvc:  bookings,
		EarningsSvc: earnings,
		ReviewSvc:   reviews,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload.Data
}

func TestBookingFlow(t *testing.T) {
	srv := newTestServer(t)

	created := doJSON(t, srv, http.MethodPost, "/v1/properties", gin.H{
		"owner_id":        "1234567890123456789",
		"title":           "Harbour View Flat",
		"type":            "apartment",
		"city":            "Lusaka",
		"max_guests":      4,
		"price_per_night": 1450,
	})
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	property := decodeData(t, created)
	propertyID := property["id"].(string)
	ownerID := property["owner_id"].(string)

	quote := doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/v1/properties/%s/quote?check_in=2026-02-10&check_out=2026-02-13", propertyID), nil)
	require.Equal(t, http.StatusOK, quote.Code)
	quoteData := decodeData(t, quote)
	assert.Equal(t, float64(3), quoteData["nights"])

	booked := doJSON(t, srv, http.MethodPost, "/v1/bookings", gin.H{
		"property_id": propertyID,
		"guest_id":    "987654321987654321",
		"check_in":    "2026-02-10",
		"check_out":   "2026-02-13",
		"guest_count": 2,
	})
	require.Equal(t, http.StatusOK, booked.Code, booked.Body.String())
	booking := decodeData(t, booked)
	bookingID := booking["id"].(string)
	assert.Equal(t, "pending", booking["status"])

	conflict := doJSON(t, srv, http.MethodPost, "/v1/bookings", gin.H{
		"property_id": propertyID,
		"guest_id":    "987654321987654321",
		"check_in":    "2026-02-12",
		"check_out":   "2026-02-14",
		"guest_count": 2,
	})
	assert.Equal(t, http.StatusConflict, conflict.Code)

	availability := doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/v1/properties/%s/availability?check_in=2026-02-12&check_out=2026-02-14", propertyID), nil)
	require.Equal(t, http.StatusOK, availability.Code)
	assert.Equal(t, false, decodeData(t, availability)["available"])

	confirmed := doJSON(t, srv, http.MethodPatch, "/v1/bookings/"+bookingID+"/status", gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, confirmed.Code)

	badTransition := doJSON(t, srv, http.MethodPatch, "/v1/bookings/"+bookingID+"/status", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusConflict, badTransition.Code)

	earnings := doJSON(t, srv, http.MethodGet, "/v1/owners/"+ownerID+"/earnings?period=this_month", nil)
	require.Equal(t, http.StatusOK, earnings.Code)
	earningsData := decodeData(t, earnings)
	gross := earningsData["gross"].(map[string]any)
	assert.Equal(t, float64(4350), gross["amount"])
	assert.Equal(t, "ZMW", gross["currency"])
}

func TestErrorStatuses(t *testing.T) {
	srv := newTestServer(t)

	missing := doJSON(t, srv, http.MethodGet, "/v1/bookings/12345", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)

	badPeriod := doJSON(t, srv, http.MethodGet, "/v1/owners/12345/earnings?period=decade", nil)
	assert.Equal(t, http.StatusBadRequest, badPeriod.Code)

	badDates := doJSON(t, srv, http.MethodPost, "/v1/bookings", gin.H{
		"property_id": "12345",
		"guest_id":    "12345",
		"check_in":    "not-a-date",
		"check_out":   "2026-02-13",
		"guest_count": 2,
	})
	assert.Equal(t, http.StatusBadRequest, badDates.Code)

	badBody := doJSON(t, srv, http.MethodPost, "/v1/properties", nil)
	assert.Equal(t, http.StatusBadRequest, badBody.Code)
}
