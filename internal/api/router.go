package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/esypg/pg-marketplace/internal/api/handler"
	"github.com/esypg/pg-marketplace/internal/api/middleware"
	"github.com/esypg/pg-marketplace/internal/core/domain"
	"github.com/esypg/pg-marketplace/internal/core/ports"
	"github.com/esypg/pg-marketplace/internal/core/service"
)

const (
	metricsSubsystem  = "pgmarket"
	createListingPath = "/pgs/add"

	// jsonBodyLimit caps every request body except listing uploads.
	jsonBodyLimit = "1MiB"
	// formOverhead is the room left for the text fields and multipart
	// framing of a listing upload.
	formOverhead      = 1 << 20
	defaultImageBytes = 5 << 20
)

// Options carries the settings the HTTP layer needs from configuration.
type Options struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	MaxImageBytes int64

	// Registerer and Gatherer back the HTTP request metrics and /metrics.
	// Nil means the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Dependencies are the adapters the router wires into the services.
// Idempotency and LoginLimiter may be nil.
type Dependencies struct {
	Accounts     ports.AccountRepository
	Listings     ports.ListingRepository
	Bookings     ports.BookingRepository
	Images       ports.ImageStore
	Idempotency  ports.IdempotencyStore
	LoginLimiter middleware.Limiter
	Checks       map[string]handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(opts Options, deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	registerer := opts.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit: jsonBodyLimit,
		Skipper: func(c echo.Context) bool {
			return c.Path() == createListingPath
		},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authService := service.NewAuthService(deps.Accounts, opts.JWTSecret, opts.TokenTTL, opts.BcryptCost, log)
	listingService := service.NewListingService(deps.Listings, deps.Accounts, deps.Images, opts.MaxImageBytes, log)
	bookingService := service.NewBookingService(deps.Bookings, deps.Listings, deps.Accounts, deps.Idempotency, log)

	authHandler := handler.NewAuthHandler(authService)
	listingHandler := handler.NewListingHandler(listingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	imageHandler := handler.NewImageHandler(deps.Images)
	healthHandler := handler.NewHealthHandler(deps.Checks)

	authenticated := middleware.Auth(opts.JWTSecret)
	brokerOnly := middleware.RBAC(domain.RoleBroker)
	loginLimit := middleware.RateLimit(deps.LoginLimiter, "login", log)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register-user", authHandler.RegisterUser)
	auth.POST("/register-broker", authHandler.RegisterBroker)
	auth.POST("/login-user", authHandler.LoginUser, loginLimit)
	auth.POST("/login-broker", authHandler.LoginBroker, loginLimit)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Listing routes ---
	pgs := e.Group("/pgs")
	pgs.POST("/add", listingHandler.Create, echomiddleware.BodyLimit(uploadBodyLimit(opts.MaxImageBytes)), authenticated, brokerOnly)
	pgs.GET("/broker/my-pgs", listingHandler.ListMine, authenticated, brokerOnly)
	pgs.GET("", listingHandler.ListAll)
	pgs.GET("/:id", listingHandler.Get)
	pgs.PUT("/:id", listingHandler.Update, authenticated)
	pgs.DELETE("/:id", listingHandler.Delete, authenticated)

	// --- Booking routes ---
	bookings := e.Group("/bookings", authenticated)
	bookings.POST("", bookingHandler.Create)
	bookings.GET("/me", bookingHandler.ListMine)
	bookings.GET("/broker/:id", bookingHandler.ListForBroker)
	bookings.DELETE("/:id", bookingHandler.Delete)

	// --- Uploaded images ---
	e.GET("/uploads/:name", imageHandler.Serve)

	// --- Health checks (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// uploadBodyLimit sizes the listing upload limit so a full set of images at
// the per-image cap still fits.
func uploadBodyLimit(maxImageBytes int64) string {
	if maxImageBytes <= 0 {
		maxImageBytes = defaultImageBytes
	}
	return strconv.FormatInt(domain.MaxListingImages*maxImageBytes+formOverhead, 10)
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error()
			}
			if v.Error != nil {
				event = event.Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
