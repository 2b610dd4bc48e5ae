package transport

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
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

// maxUploadBytes bounds the multipart form held in memory per request.
const maxUploadBytes = 32 << 20

// CategoryRef is the embedded category of a saree response, null when
// the saree is unlinked.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SareeResponse represents a saree joined with its category
type SareeResponse struct {
	ID          string       `json:"id"`
	ProductName string       `json:"productName"`
	CategoryID  *string      `json:"categoryId"`
	Category    *CategoryRef `json:"category"`
	Price       float64      `json:"price"`
	OfferPrice  *float64     `json:"offerPrice"`
	Rating      *float64     `json:"rating"`
	Image1      *string      `json:"image1"`
	Image2      *string      `json:"image2"`
	Image3      *string      `json:"image3"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func toSareeResponse(saree *domain.Saree) SareeResponse {
	response := SareeResponse{
		ID:          saree.ID.String(),
		ProductName: saree.ProductName,
		Price:       saree.Price,
		OfferPrice:  saree.OfferPrice,
		Rating:      saree.Rating,
		Image1:      saree.Image1,
		Image2:      saree.Image2,
		Image3:      saree.Image3,
		CreatedAt:   saree.CreatedAt,
		UpdatedAt:   saree.UpdatedAt,
	}

	if saree.CategoryID != nil {
		id := saree.CategoryID.String()
		response.CategoryID = &id
	}
	if saree.Category != nil {
		response.Category = &CategoryRef{
			ID:   saree.Category.ID.String(),
			Name: saree.Category.Name,
		}
	}

	return response
}

// SareeHandler handles HTTP requests for saree operations
type SareeHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewSareeHandler creates a new SareeHandler
func NewSareeHandler(catalog service.CatalogService, logger *zap.Logger) *SareeHandler {
	return &SareeHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all saree routes. The writeMiddleware wraps
// mutation endpoints (rate limiting).
func (h *SareeHandler) RegisterRoutes(r chi.Router, writeMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/sarees", func(r chi.Router) {
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

// Create handles saree creation from a multipart form. Files arrive
// either slot-addressed (image1..image3) or as an "images" array that
// fills empty slots in order.
func (h *SareeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := service.CreateSareeInput{
		ProductName: r.FormValue("productName"),
	}

	if raw := formField(r, "categoryId"); raw != nil {
		categoryID, err := uuid.Parse(*raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		input.CategoryID = &categoryID
	}

	price, err := parseFloatField(r, "price")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if price != nil {
		input.Price = *price
	}

	if input.OfferPrice, err = parseFloatField(r, "offerPrice"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Rating, err = parseFloatField(r, "rating"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	images, cleanup, err := collectSlotFiles(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()
	input.Images = images

	saree, err := h.catalog.CreateSaree(r.Context(), input)
	if err != nil {
		h.respondCatalogError(w, "Saree create failed", err)
		return
	}

	h.logger.Info("Saree created",
		zap.String("saree_id", saree.ID.String()),
		zap.Int("images", len(saree.ImageURLs())),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, toSareeResponse(saree))
}

// Update handles a partial saree update. Only fields present in the
// form mutate; image files are slot-addressed ("images" files take
// the remaining slots in order) and deleteImage1..3 flags clear
// individual slots.
func (h *SareeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := service.UpdateSareeInput{
		ProductName: formField(r, "productName"),
	}

	if raw := formField(r, "categoryId"); raw != nil {
		categoryID, err := uuid.Parse(*raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid categoryId")
			return
		}
		input.CategoryID = &categoryID
	}

	var err error
	if input.Price, err = parseFloatField(r, "price"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.OfferPrice, err = parseFloatField(r, "offerPrice"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if input.Rating, err = parseFloatField(r, "rating"); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	images, cleanup, err := collectSlotFiles(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer cleanup()
	input.Images = images

	for slot := 0; slot < domain.ImageSlotCount; slot++ {
		input.DeleteSlots[slot] = parseBoolField(r, fmt.Sprintf("deleteImage%d", slot+1))
	}

	saree, err := h.catalog.UpdateSaree(r.Context(), id, input)
	if err != nil {
		h.respondCatalogError(w, "Saree update failed", err)
		return
	}

	h.logger.Info("Saree updated", zap.String("saree_id", saree.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, toSareeResponse(saree))
}

// Delete handles saree deletion
func (h *SareeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteSaree(r.Context(), id); err != nil {
		h.respondCatalogError(w, "Saree delete failed", err)
		return
	}

	h.logger.Info("Saree deleted", zap.String("saree_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "saree deleted"})
}

// List handles saree listing with optional category and product name
// filters, newest first.
func (h *SareeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.SareeFilter{
		CategoryName: r.URL.Query().Get("category"),
		ProductName:  r.URL.Query().Get("productName"),
	}

	sarees, err := h.catalog.ListSarees(r.Context(), filter)
	if err != nil {
		h.respondCatalogError(w, "Saree list failed", err)
		return
	}

	response := make([]SareeResponse, 0, len(sarees))
	for _, saree := range sarees {
		response = append(response, toSareeResponse(saree))
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Get handles fetching a single saree
func (h *SareeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	saree, err := h.catalog.GetSaree(r.Context(), id)
	if err != nil {
		h.respondCatalogError(w, "Saree fetch failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toSareeResponse(saree))
}

func (h *SareeHandler) respondCatalogError(w http.ResponseWriter, logMsg string, err error) {
	respondCatalogError(w, h.logger, logMsg, err)
}

// formField returns the form value when the field was present in the
// request, nil when omitted. Presence is what separates "leave this
// field alone" from "set it".
func formField(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func parseFloatField(r *http.Request, name string) (*float64, error) {
	raw := formField(r, name)
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &value, nil
}

func parseBoolField(r *http.Request, name string) bool {
	raw := formField(r, name)
	if raw == nil {
		return false
	}
	value, err := strconv.ParseBool(strings.TrimSpace(*raw))
	return err == nil && value
}

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func openUpload(header *multipart.FileHeader) (*media.Object, func(), error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return nil, nil, fmt.Errorf("unsupported image type %q", ext)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded file")
	}

	object := &media.Object{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}

	return object, func() { file.Close() }, nil
}

// collectSlotFiles gathers uploaded files keyed by slot (image1..3).
// Files posted under the plain "images" key are assigned to the
// remaining slots in request order, so clients that never adopted the
// slot-addressed field names still get every file applied.
func collectSlotFiles(r *http.Request) ([domain.ImageSlotCount]*media.Object, func(), error) {
	var images [domain.ImageSlotCount]*media.Object
	closers := []func(){}
	cleanup := func() {
		for _, closeFn := range closers {
			closeFn()
		}
	}

	if r.MultipartForm == nil {
		return images, cleanup, nil
	}

	for slot := 0; slot < domain.ImageSlotCount; slot++ {
		headers := r.MultipartForm.File[fmt.Sprintf("image%d", slot+1)]
		if len(headers) == 0 {
			continue
		}
		object, closeFn, err := openUpload(headers[0])
		if err != nil {
			cleanup()
			return images, func() {}, err
		}
		images[slot] = object
		closers = append(closers, closeFn)
	}

	for _, header := range r.MultipartForm.File["images"] {
		slot := -1
		for i := 0; i < domain.ImageSlotCount; i++ {
			if images[i] == nil {
				slot = i
				break
			}
		}
		if slot == -1 {
			cleanup()
			return images, func() {}, fmt.Errorf("at most %d images are allowed", domain.ImageSlotCount)
		}

		object, closeFn, err := openUpload(header)
		if err != nil {
			cleanup()
			return images, func() {}, err
		}
		images[slot] = object
		closers = append(closers, closeFn)
	}

	return images, cleanup, nil
}
