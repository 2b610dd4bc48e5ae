package transport

import (
	"errors"
	"net/http"
	"time"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/domain"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/media"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/middleware"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/repository"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryRequest represents the category create/update payload
type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

// CategoryResponse represents a category
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID.String(),
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

// CategoryHandler handles HTTP requests for category operations
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all category routes. The writeMiddleware
// wraps mutation endpoints (rate limiting).
func (h *CategoryHandler) RegisterRoutes(r chi.Router, writeMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			if writeMiddleware != nil {
				r.Use(writeMiddleware)
			}
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles category creation
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category create validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.respondCatalogError(w, "Category create failed", err)
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update handles category rename
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Category update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, req.Name)
	if err != nil {
		h.respondCatalogError(w, "Category update failed", err)
		return
	}

	h.logger.Info("Category updated", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete handles category deletion. Sarees that referenced the
// category come back with a null category, never a dangling id.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.respondCatalogError(w, "Category delete failed", err)
		return
	}

	h.logger.Info("Category deleted", zap.String("category_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// List handles listing all categories, newest first
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.respondCatalogError(w, "Category list failed", err)
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, toCategoryResponse(category))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Get handles fetching a single category
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, "Category fetch failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (h *CategoryHandler) respondCatalogError(w http.ResponseWriter, logMsg string, err error) {
	respondCatalogError(w, h.logger, logMsg, err)
}

// parseIDParam extracts and parses the {id} route parameter.
func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// respondCatalogError maps catalog errors onto the HTTP taxonomy:
// validation 400, missing references 404, name conflicts 409, media
// upload failures 502, everything else 500.
func respondCatalogError(w http.ResponseWriter, logger *zap.Logger, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		logger.Debug(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrCategoryNotFound):
		logger.Debug(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, repository.ErrSareeNotFound):
		logger.Debug(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusNotFound, "saree not found")
	case errors.Is(err, repository.ErrCategoryAlreadyExists):
		logger.Debug(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
	case errors.Is(err, media.ErrUpload):
		logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "image upload failed")
	default:
		logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
