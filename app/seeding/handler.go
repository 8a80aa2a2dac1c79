package seeding

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/tabrima/storefront/app/api"
	"github.com/tabrima/storefront/models"
)

type MigrateResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Categories []models.Category `json:"categories,omitempty"`
	Error      string            `json:"error,omitempty"`
}

type CategorySeeder interface {
	Seed(ctx context.Context) ([]models.Category, error)
}

type SeedHandler struct {
	seeder CategorySeeder
	logger *slog.Logger
}

func NewSeedHandler(s CategorySeeder, logger *slog.Logger) *SeedHandler {
	return &SeedHandler{seeder: s, logger: logger}
}

// HandleMigrateCategories runs the category seed and reports the resulting
// category list.
func (h *SeedHandler) HandleMigrateCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.seeder.Seed(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "category migration failed", "error", err)
		api.JSONResponse(w, http.StatusInternalServerError, MigrateResponse{
			Success: false,
			Message: "Category migration failed",
			Error:   err.Error(),
		})
		return
	}

	if categories == nil {
		categories = []models.Category{}
	}
	api.OKResponse(w, MigrateResponse{
		Success:    true,
		Message:    "Category migration completed successfully",
		Categories: categories,
	})
}
