package api

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/regeshengen/water-quality-api/internal/api/handler"
	"github.com/regeshengen/water-quality-api/internal/api/middleware"
	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common/security"
	"github.com/regeshengen/water-quality-api/internal/platform/metrics"
)

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	Logger         *slog.Logger
	Tokens         *security.TokenManager
	AuthService    *service.AuthService
	UserService    *service.UserService
	ProductService *service.ProductService
	SensorService  *service.SensorReadingService
	Metrics        *metrics.HTTPMetrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	LoginLimiter   *middleware.IPRateLimiter
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
	// RequestTimeout bounds each handler; zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
}

func NewRouter(deps Dependencies) http.Handler {
	requestTimeout := deps.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RealIP(deps.TrustedProxies))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	// Verifies "Authorization: Bearer T" when present; Authenticator decides
	// per route whether a token is required.
	r.Use(jwtauth.Verifier(deps.Tokens.JWTAuth()))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	loginLimiter := deps.LoginLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.NewIPRateLimiter(0)
	}

	authn := middleware.Authenticator(deps.UserService)

	authHandler := handler.NewAuthHandler(deps.AuthService, loginLimiter, authn)
	r.Route("/auth", authHandler.RegisterRoutes)

	userHandler := handler.NewUserHandler(deps.UserService, authn)
	r.Route("/users", userHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(deps.ProductService, authn)
	r.Route("/products", productHandler.RegisterRoutes)

	sensorHandler := handler.NewSensorHandler(deps.SensorService)
	r.Route("/sensor-data", sensorHandler.RegisterRoutes)

	return r
}
