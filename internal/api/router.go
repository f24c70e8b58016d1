package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"loan-origination/internal/api/handler"
	mw "loan-origination/internal/api/middleware"
	"loan-origination/internal/config"
	"loan-origination/internal/domain/application"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/document"
	"loan-origination/internal/domain/organization"
	"loan-origination/internal/domain/user"

	_ "loan-origination/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Pinger is the slice of the database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the domain services the router wires into handlers.
type Services struct {
	Applications  application.Service
	Customers     customer.Service
	Users         user.Service
	Organizations organization.Service
	Documents     document.Service
}

func SetupRouter(services Services, db Pinger, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupHealthEndpoints(router, db)
	setupSwaggerEndpoint(router, logger)

	router.Route("/api/v1", func(r chi.Router) {
		setupAuthRoutes(r, cfg, services.Users, logger)
		setupApplicationRoutes(r, cfg, services, logger)
		setupCalculationRoutes(r, cfg, logger)
		setupCustomerRoutes(r, cfg, services.Customers, logger)
		setupUserRoutes(r, cfg, services.Users, logger)
		setupOrganizationRoutes(r, cfg, services.Organizations, logger)
		setupDocumentRoutes(r, cfg, services.Documents, logger)
	})

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupHealthEndpoints(router *chi.Mux, db Pinger) {
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Get("/health/detailed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","database":"unreachable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","database":"ok"}`))
	})
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func setupAuthRoutes(router chi.Router, cfg *config.Config, users user.Service, logger *slog.Logger) {
	h := handler.NewAuthHandler(cfg.Server.Auth, users, logger)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.Login)
		r.Post("/refresh", h.Refresh)
	})
}

func setupApplicationRoutes(router chi.Router, cfg *config.Config, services Services, logger *slog.Logger) {
	h := handler.NewApplicationHandler(services.Applications, logger)
	docs := handler.NewDocumentHandler(services.Documents, cfg.Storage.MaxFileSize, logger)

	router.Route("/loan-applications", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateApplication)
		r.Get("/", h.ListApplications)
		r.Get("/stats/summary", h.SummaryStats)
		r.Route("/{applicationID}", func(r chi.Router) {
			r.Get("/", h.GetApplication)
			r.Put("/", h.UpdateApplication)
			r.Delete("/", h.DeleteApplication)
			r.Patch("/status", h.UpdateStatus)
			r.Patch("/assign-officer", h.AssignOfficer)
			r.Post("/documents", docs.UploadDocument)
			r.Get("/documents", docs.ListDocuments)
		})
	})
}

func setupCalculationRoutes(router chi.Router, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewCalculationHandler(logger)

	router.Route("/loan-calculations", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/emi", h.CalculateEMI)
	})
}

func setupCustomerRoutes(router chi.Router, cfg *config.Config, svc customer.Service, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	router.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Put("/", h.UpdateCustomer)
			r.Delete("/", h.DeleteCustomer)
		})
	})
}

func setupUserRoutes(router chi.Router, cfg *config.Config, svc user.Service, logger *slog.Logger) {
	h := handler.NewUserHandler(svc, logger)

	router.Route("/users", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetUser)
	})
}

func setupOrganizationRoutes(router chi.Router, cfg *config.Config, svc organization.Service, logger *slog.Logger) {
	h := handler.NewOrganizationHandler(svc, logger)

	router.Route("/branches", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateBranch)
		r.Get("/", h.ListBranches)
		r.Get("/{branchID}", h.GetBranch)
	})
	router.Route("/departments", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateDepartment)
		r.Get("/", h.ListDepartments)
		r.Get("/{departmentID}", h.GetDepartment)
	})
}

func setupDocumentRoutes(router chi.Router, cfg *config.Config, svc document.Service, logger *slog.Logger) {
	h := handler.NewDocumentHandler(svc, cfg.Storage.MaxFileSize, logger)

	router.Route("/documents", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", h.GetDocument)
			r.Delete("/", h.DeleteDocument)
			r.Patch("/verify", h.VerifyDocument)
		})
	})
}
