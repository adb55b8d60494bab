package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/bookcycle/bookcycle-backend/internal/api/handlers"
	"github.com/bookcycle/bookcycle-backend/internal/auth"
	"github.com/bookcycle/bookcycle-backend/internal/config"
	"github.com/bookcycle/bookcycle-backend/internal/metrics"
	"github.com/bookcycle/bookcycle-backend/internal/middleware"
	"github.com/bookcycle/bookcycle-backend/internal/models"
	"github.com/bookcycle/bookcycle-backend/internal/services"
	"github.com/bookcycle/bookcycle-backend/internal/storage"
)

type Deps struct {
	Cfg           config.Config
	TM            *auth.TokenManager
	Users         *services.UserService
	Books         *services.BookService
	Txns          *services.TransactionService
	Payments      *services.PaymentService
	Notifications *services.NotificationService
	Support       *services.SupportService
	Stats         *services.StatsService
	Images        storage.ImageStore
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(d.Cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	am := middleware.NewAuthMiddleware(d.TM)

	authH := handlers.NewAuthHandler(d.Users, d.TM)
	userH := handlers.NewUserHandler(d.Users)
	bookH := handlers.NewBookHandler(d.Books)
	txnH := handlers.NewTransactionHandler(d.Txns)
	payH := handlers.NewPaymentHandler(d.Payments)
	notifH := handlers.NewNotificationHandler(d.Notifications)
	supportH := handlers.NewSupportHandler(d.Support)
	adminH := handlers.NewAdminHandler(d.Stats)
	optionsH := handlers.NewOptionsHandler(d.Books, d.Stats)
	uploadH := handlers.NewUploadHandler(d.Images)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// public storefront, richer when a token is sent
		r.Group(func(r chi.Router) {
			r.Use(am.Optional)
			r.Get("/books", bookH.List)
			r.Get("/books/{id}", bookH.Get)
			r.Get("/options", optionsH.Options)
			r.Post("/support", supportH.Create)
			r.Get("/support", supportH.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(am.Require)

			r.Get("/auth/me", authH.Me)
			r.Put("/profile", userH.UpdateProfile)

			r.Post("/books", bookH.Create)
			r.Put("/books/{id}", bookH.Update)
			r.Delete("/books/{id}", bookH.Delete)
			r.Post("/books/{id}/purchase", bookH.Purchase)

			r.Get("/transactions", txnH.List)
			r.Get("/transactions/{id}", txnH.Get)

			r.Post("/payment/checkout", payH.CreateCheckout)
			r.Post("/payment/verify", payH.VerifyPayment)

			r.Get("/notifications", notifH.List)
			r.Put("/notifications/{id}", notifH.SetRead)

			r.Post("/upload", uploadH.Upload)

			r.Get("/users", userH.List)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
				r.Post("/books/{id}/verify", bookH.Verify)
				r.Post("/books/{id}/reject", bookH.Reject)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/users", userH.Create)
				r.Delete("/users/{id}", userH.Delete)

				r.Get("/admin/stats", adminH.Dashboard)
				r.Get("/admin/reward-settings", adminH.Settings)
				r.Put("/admin/reward-settings", adminH.UpdateSettings)

				r.Put("/support/{id}", supportH.Update)
				r.Delete("/support/{id}", supportH.Delete)
			})
		})
	})

	return r
}
