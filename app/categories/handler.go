package categories

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tabrima/storefront/app/api"
	"github.com/tabrima/storefront/models"
)

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	repo   CategoryProvider
	logger *slog.Logger
}

func NewCategoryHandler(r CategoryProvider, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{repo: r, logger: logger}
}

func toResponse(c models.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
	}
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list categories", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = toResponse(c)
	}

	api.OKResponse(w, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	category, err := h.repo.GetCategoryByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	api.OKResponse(w, toResponse(*category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		h.writeError(w, r, err)
		return
	}

	api.CreatedResponse(w, toResponse(*category))
}

func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}

	category := &models.Category{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
	}

	if err := h.repo.UpdateCategory(r.Context(), category); err != nil {
		h.writeError(w, r, err)
		return
	}

	api.OKResponse(w, toResponse(*category))
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrCategoryNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrCategoryExists):
		api.ErrorResponse(w, http.StatusConflict, "Category already exists")
	case errors.Is(err, models.ErrCategoryInUse):
		api.ErrorResponse(w, http.StatusConflict, "Category still has products")
	default:
		h.logger.ErrorContext(r.Context(), "category request failed", "error", err)
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to save category")
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (CategoryInput, bool) {
	var input CategoryInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return input, false
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Icon = strings.TrimSpace(input.Icon)
	if input.Name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return input, false
	}
	if len(input.Name) > 100 || len(input.Icon) > 50 {
		api.ErrorResponse(w, http.StatusBadRequest, "Name or icon too long")
		return input, false
	}
	return input, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
