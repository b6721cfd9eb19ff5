package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/colisdirect/colisdirect-backend/api/controllers"
	"github.com/colisdirect/colisdirect-backend/api/middleware"
	"github.com/colisdirect/colisdirect-backend/internal/analytics"
	authsvc "github.com/colisdirect/colisdirect-backend/internal/auth"
	"github.com/colisdirect/colisdirect-backend/internal/bordereaux"
	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/internal/deposits"
	"github.com/colisdirect/colisdirect-backend/internal/notifications"
	"github.com/colisdirect/colisdirect-backend/internal/users"
	"github.com/colisdirect/colisdirect-backend/pkg/auth/session"
	"github.com/colisdirect/colisdirect-backend/pkg/config"
	"github.com/colisdirect/colisdirect-backend/pkg/db"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
	"github.com/colisdirect/colisdirect-backend/pkg/redis"
)

// RouterParams collects every dependency the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Sessions     session.AccessSessionChecker
	Users        *users.Repository
	Auth         authsvc.Service
	Delivery     delivery.Service
	Bordereaux   bordereaux.Service
	Deposits     deposits.Service
	Analytics    analytics.Service
	Notification notifications.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/scan/{code}", controllers.ScanEntity(p.Delivery, logg))

		r.Route("/internal-delivery", func(r chi.Router) {
			r.Post("/assign", controllers.AssignOrder(p.Delivery, p.Users, logg))
			r.Put("/{id}/deliver", controllers.DeliverOrder(p.Delivery, p.Users, logg))
			r.Put("/{id}/status", controllers.UpdateOrderStatus(p.Delivery, p.Users, logg))
			r.Get("/my-deliveries", controllers.MyDeliveries(p.Delivery, logg))
			r.Get("/my-history", controllers.MyHistory(p.Delivery, logg))
			r.Get("/analytics", controllers.DeliveryAnalytics(p.Analytics, logg))
		})

		r.Route("/bordereaux", func(r chi.Router) {
			r.Post("/assign", controllers.AssignBordereau(p.Bordereaux, p.Users, logg))
			r.Get("/code/{code}", controllers.BordereauPreview(p.Bordereaux, logg))
		})

		r.Route("/deposits", func(r chi.Router) {
			r.Post("/", controllers.CreateDeposit(p.Deposits, p.Users, logg))
			r.Get("/my-status", controllers.MyDepositStatus(p.Deposits, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/", controllers.ListDeposits(p.Deposits, logg))
				r.Put("/{id}/confirm", controllers.ResolveDeposit(p.Deposits, logg))
				r.Get("/status/{userId}", controllers.DepositStatusByUser(p.Deposits, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notification, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notification, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notification, logg))
		})
	})

	return r
}
