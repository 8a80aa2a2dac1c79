package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/tabrima/storefront/app/auth"
	"github.com/tabrima/storefront/app/catalog"
	"github.com/tabrima/storefront/app/categories"
	"github.com/tabrima/storefront/app/config"
	"github.com/tabrima/storefront/app/logging"
	"github.com/tabrima/storefront/app/middleware"
	"github.com/tabrima/storefront/app/seeding"
	"github.com/tabrima/storefront/app/static"
	"github.com/tabrima/storefront/app/uploads"
	"github.com/tabrima/storefront/models"
	"gorm.io/gorm"
)

// NewRouter builds the storefront HTTP handler on top of an open store.
func NewRouter(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (http.Handler, error) {
	if cfg.SessionSecret == config.FallbackSessionSecret {
		logger.Warn("SESSION_SECRET is not set, using the fallback secret")
	}
	authenticator, err := auth.New(auth.Options{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		Password:     cfg.AdminPassword,
		Secret:       cfg.SessionSecret,
		Secure:       cfg.IsProduction(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("admin auth: %w", err)
	}

	categoriesRepo := models.NewCategoriesRepository(db)
	productsRepo := models.NewProductsRepository(db)

	seeder := seeding.NewSeeder(categoriesRepo,
		seeding.WithSchemaRepair(cfg.Database.RepairSchema),
		seeding.WithLogger(logger),
	)

	categoriesHandler := categories.NewCategoryHandler(categoriesRepo, logger)
	catalogHandler := catalog.NewCatalogHandler(productsRepo, logger)
	seedHandler := seeding.NewSeedHandler(seeder, logger)
	uploadHandler := uploads.NewHandler(cfg.UploadsDir, middleware.MaxBodyBytes, logger)

	// Limits only apply in production, where clients sit behind the proxy.
	globalLimit, strictLimit := middleware.Passthrough, middleware.Passthrough
	if cfg.IsProduction() {
		globalLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Window:     cfg.RateLimitWindow,
			Limit:      cfg.RateLimitMaxRequests,
			TrustProxy: true,
		}, logger)
		strictLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Window:     middleware.StrictWindow,
			Limit:      middleware.StrictLimit,
			Message:    "Too many attempts, please try again later.",
			TrustProxy: true,
		}, logger)
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", categoriesHandler.HandleGetAll).Methods(http.MethodGet)
	api.HandleFunc("/categories/{id:[0-9]+}", categoriesHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/products", catalogHandler.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/products/{id:[0-9]+}", catalogHandler.HandleGetProduct).Methods(http.MethodGet)

	api.Handle("/admin/login", strictLimit(http.HandlerFunc(authenticator.HandleLogin))).Methods(http.MethodPost)
	api.HandleFunc("/admin/logout", authenticator.HandleLogout).Methods(http.MethodPost)
	api.HandleFunc("/admin/session", authenticator.HandleSession).Methods(http.MethodGet)

	api.Handle("/migrate-categories",
		strictLimit(authenticator.RequireAdmin(http.HandlerFunc(seedHandler.HandleMigrateCategories))),
	).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticator.RequireAdmin)
	admin.HandleFunc("/categories", categoriesHandler.HandleCreate).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id:[0-9]+}", categoriesHandler.HandleUpdate).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{id:[0-9]+}", categoriesHandler.HandleDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/products", catalogHandler.HandleCreate).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id:[0-9]+}", catalogHandler.HandleUpdate).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id:[0-9]+}", catalogHandler.HandleDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/uploads", uploadHandler.HandleUpload).Methods(http.MethodPost)

	static.New(cfg.RootDir, cfg.PublicDir, cfg.UploadsDir).Register(r)

	var h http.Handler = r
	h = middleware.BodyLimit(middleware.MaxBodyBytes)(h)
	h = globalLimit(h)
	h = cors.AllowAll().Handler(h)
	h = middleware.Recover(logger, cfg.IsDevelopment())(h)
	return logging.Decorate(nil, logger, h), nil
}
