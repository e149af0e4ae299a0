package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/serviqo/serviqo-backend/api/controllers"
	"github.com/serviqo/serviqo-backend/api/middleware"
	"github.com/serviqo/serviqo-backend/internal/accounts"
	"github.com/serviqo/serviqo-backend/internal/auth"
	"github.com/serviqo/serviqo-backend/internal/bookings"
	"github.com/serviqo/serviqo-backend/internal/listings"
	"github.com/serviqo/serviqo-backend/internal/transactions"
	"github.com/serviqo/serviqo-backend/pkg/auth/session"
	"github.com/serviqo/serviqo-backend/pkg/config"
	"github.com/serviqo/serviqo-backend/pkg/db"
	"github.com/serviqo/serviqo-backend/pkg/enums"
	"github.com/serviqo/serviqo-backend/pkg/logger"
	"github.com/serviqo/serviqo-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	Registry       *prometheus.Registry

	AuthService        auth.Service
	AccountService     accounts.Service
	ListingService     listings.Service
	BookingService     bookings.Service
	TransactionService transactions.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(deps.DB, deps.Redis)))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	// Browsing the marketplace does not require an account.
	r.Route("/api/v1/services", func(r chi.Router) {
		r.Get("/", controllers.ServiceList(deps.ListingService, logg))
		r.Get("/{serviceId}", controllers.ServiceDetail(deps.ListingService, logg))
	})

	// A typed-nil *redis.Client must not reach the middleware as a non-nil
	// interface, so the conversion is guarded.
	var idempotencyStore redis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/accounts/me", func(r chi.Router) {
			r.Get("/", controllers.AccountProfile(deps.AccountService, logg))
			r.Get("/balance", controllers.AccountBalance(deps.AccountService, logg))
			r.Get("/transactions", controllers.AccountTransactions(deps.TransactionService, logg))
		})

		r.Route("/provider/services", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.AccountRoleProvider), logg))
			r.Get("/", controllers.ProviderListServices(deps.ListingService, logg))
			r.Post("/", controllers.ProviderCreateService(deps.ListingService, logg))
			r.Post("/{serviceId}/active", controllers.ProviderSetServiceActive(deps.ListingService, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingList(deps.BookingService, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(deps.BookingService, logg))
			r.With(middleware.RequireRole(string(enums.AccountRoleClient), logg)).
				Post("/", controllers.BookingCreate(deps.BookingService, logg))
			r.With(middleware.RequireRole(string(enums.AccountRoleClient), logg)).
				Post("/{bookingId}/cancel", controllers.BookingCancel(deps.BookingService, logg))
		})

		if !cfg.App.IsProd() {
			r.Post("/dev/credit", controllers.DevCredit(deps.AccountService, logg))
		}
	})

	return r
}
