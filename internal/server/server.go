package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zamstay/zamstay/internal/booking"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/earnings"
	earningsdomain "github.com/zamstay/zamstay/internal/earnings/domain"
	"github.com/zamstay/zamstay/internal/observability"
	obsmiddleware "github.com/zamstay/zamstay/internal/observability/logger"
	obsmetrics "github.com/zamstay/zamstay/internal/observability/metrics"
	obstracing "github.com/zamstay/zamstay/internal/observability/tracing"
	"github.com/zamstay/zamstay/internal/property"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/internal/review"
	reviewdomain "github.com/zamstay/zamstay/internal/review/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	property.Module,
	booking.Module,
	earnings.Module,
	review.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	propertySvc propertydomain.Service
	bookingSvc  bookingdomain.Service
	earningsSvc earningsdomain.Service
	reviewSvc   reviewdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	PropertySvc propertydomain.Service
	BookingSvc  bookingdomain.Service
	EarningsSvc earningsdomain.Service
	ReviewSvc   reviewdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		propertySvc: p.PropertySvc,
		bookingSvc:  p.BookingSvc,
		earningsSvc: p.EarningsSvc,
		reviewSvc:   p.ReviewSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Properties --------
	v1.GET("/properties", s.ListProperties)
	v1.POST("/properties", s.CreateProperty)
	v1.GET("/properties/:id", s.GetPropertyByID)
	v1.GET("/properties/slug/:slug", s.GetPropertyBySlug)
	v1.POST("/properties/:id/verify", s.VerifyProperty)
	v1.POST("/properties/:id/deactivate", s.DeactivateProperty)
	v1.POST("/properties/:id/activate", s.ActivateProperty)
	v1.GET("/properties/:id/availability", s.CheckAvailability)
	v1.GET("/properties/:id/quote", s.PriceQuote)
	v1.GET("/properties/:id/bookings", s.ListBookingsByProperty)
	v1.GET("/properties/:id/reviews", s.ListReviewsByProperty)

	// -------- Reviews --------
	v1.POST("/reviews", s.CreateReview)

	// -------- Bookings --------
	v1.POST("/bookings", s.CreateBooking)
	v1.GET("/bookings/:id", s.GetBookingByID)
	v1.GET("/bookings/reference/:reference", s.GetBookingByReference)
	v1.PATCH("/bookings/:id/status", s.UpdateBookingStatus)

	// -------- Owners --------
	v1.GET("/owners/:id/bookings", s.ListBookingsByOwner)
	v1.GET("/owners/:id/earnings", s.GetOwnerEarnings)
}
