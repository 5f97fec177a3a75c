package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Parts-Shop-Manager-Backend/internal/api/middleware"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/config"
	"github.com/ndewijer/Parts-Shop-Manager-Backend/internal/service"
)

// Services are the service-layer dependencies of the router.
type Services struct {
	System    *service.SystemService
	Auth      *service.AuthService
	Products  *service.ProductService
	Ledger    *service.LedgerService
	Dashboard *service.DashboardService
	Backup    *service.BackupService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Product images
	if prefix := strings.TrimSuffix(cfg.Storage.UploadURLPrefix, "/"); prefix != "" {
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Storage.UploadDir)))
		r.Get(prefix+"/*", fileServer.ServeHTTP)
	}

	systemHandler := handlers.NewSystemHandler(svc.System)
	authHandler := handlers.NewAuthHandler(svc.Auth)
	productHandler := handlers.NewProductHandler(svc.Products, svc.Ledger)
	transactionHandler := handlers.NewTransactionHandler(svc.Ledger)
	dashboardHandler := handlers.NewDashboardHandler(svc.Dashboard, cfg.Display.CurrencySymbol, logger)
	backupHandler := handlers.NewBackupHandler(svc.Backup)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(svc.Auth))

			r.Get("/auth/session", authHandler.Session)

			r.Route("/product", func(r chi.Router) {
				r.Get("/", productHandler.ListProducts)
				r.Post("/", productHandler.CreateProduct)
				r.Get("/export", productHandler.ExportCSV)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", productHandler.GetProduct)
					r.Put("/", productHandler.UpdateProduct)
					r.Delete("/", productHandler.DeleteProduct)
					r.Post("/sale", productHandler.RecordSale)
					r.Post("/return", productHandler.RecordReturn)
				})
			})

			r.Route("/transaction", func(r chi.Router) {
				r.Get("/", transactionHandler.AllTransactions)
				r.Get("/grouped", transactionHandler.GroupedTransactions)
				r.With(custommiddleware.ValidateUUIDMiddleware).Get("/{uuid}", transactionHandler.GetTransaction)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/", dashboardHandler.Dashboard)
				r.Get("/stream", dashboardHandler.Stream)
			})

			r.Route("/backup", func(r chi.Router) {
				r.Get("/", backupHandler.Download)
				r.Post("/", backupHandler.Restore)
			})
		})
	})

	return r
}
