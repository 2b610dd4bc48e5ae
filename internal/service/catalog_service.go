package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/domain"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/media"
	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrValidation marks malformed or missing required input. Wrapped
	// errors carry a human-readable message.
	ErrValidation = errors.New("validation failed")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// CreateSareeInput carries the fields for a new saree. Optional fields
// are pointers so "omitted" is distinguishable from a zero value.
// Images are keyed by slot index.
type CreateSareeInput struct {
	ProductName string
	CategoryID  *uuid.UUID
	Price       float64
	OfferPrice  *float64
	Rating      *float64
	Images      [domain.ImageSlotCount]*media.Object
}

// UpdateSareeInput is a partial update. Nil fields retain their prior
// value. Images uploads and DeleteSlots flags are keyed by slot index,
// so touching slot 2 never shifts slots 1 and 3.
type UpdateSareeInput struct {
	ProductName *string
	CategoryID  *uuid.UUID
	Price       *float64
	OfferPrice  *float64
	Rating      *float64
	Images      [domain.ImageSlotCount]*media.Object
	DeleteSlots [domain.ImageSlotCount]bool
}

// CatalogService orchestrates the repositories and the media store,
// enforcing the catalog's referential and image-lifecycle invariants.
type CatalogService interface {
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	CreateSaree(ctx context.Context, input CreateSareeInput) (*domain.Saree, error)
	UpdateSaree(ctx context.Context, id uuid.UUID, input UpdateSareeInput) (*domain.Saree, error)
	DeleteSaree(ctx context.Context, id uuid.UUID) error
	GetSaree(ctx context.Context, id uuid.UUID) (*domain.Saree, error)
	ListSarees(ctx context.Context, filter repository.SareeFilter) ([]*domain.Saree, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	sareeRepo    repository.SareeRepository
	mediaStore   media.Store
	logger       *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	sareeRepo repository.SareeRepository,
	mediaStore media.Store,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		sareeRepo:    sareeRepo,
		mediaStore:   mediaStore,
		logger:       logger,
	}
}

// CreateCategory creates a category with a unique name.
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("category name is required")
	}

	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames a category. Uniqueness is re-checked on the
// write, same as on create.
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("category name is required")
	}

	return s.categoryRepo.Update(ctx, id, name)
}

// DeleteCategory removes a category. Sarees referencing it are
// unlinked in the same transaction by the repository.
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categoryRepo.Delete(ctx, id)
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// CreateSaree validates, uploads the supplied images, and persists the
// new saree. The category check runs before any upload so a bad
// reference never leaves orphaned media, and an upload failure aborts
// with nothing persisted.
func (s *catalogService) CreateSaree(ctx context.Context, input CreateSareeInput) (*domain.Saree, error) {
	if strings.TrimSpace(input.ProductName) == "" {
		return nil, validationError("product name is required")
	}
	if input.CategoryID == nil {
		return nil, validationError("category is required")
	}
	if err := validatePricing(input.Price, input.OfferPrice); err != nil {
		return nil, err
	}
	rating, err := normalizeRating(input.Rating)
	if err != nil {
		return nil, err
	}

	imageCount := 0
	for _, img := range input.Images {
		if img != nil {
			imageCount++
		}
	}
	if imageCount == 0 {
		return nil, validationError("at least one image is required")
	}

	// Referential check before any media mutation.
	if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
		return nil, err
	}

	saree := &domain.Saree{
		ID:          uuid.New(),
		ProductName: strings.TrimSpace(input.ProductName),
		CategoryID:  input.CategoryID,
		Price:       input.Price,
		OfferPrice:  input.OfferPrice,
		Rating:      rating,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	uploaded := []string{}
	for slot, img := range input.Images {
		if img == nil {
			continue
		}
		url, err := s.mediaStore.Upload(ctx, *img)
		if err != nil {
			s.cleanupURLs(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, url)
		saree.SetImageSlot(slot, &url)
	}

	if err := s.sareeRepo.Create(ctx, saree); err != nil {
		s.cleanupURLs(ctx, uploaded)
		return nil, err
	}

	return s.sareeRepo.FindByID(ctx, saree.ID)
}

// UpdateSaree merges the partial input over the stored saree. New
// images are uploaded per slot before the row is written; URLs they
// replace, and slots explicitly cleared, are deleted from the media
// store only after the persist succeeds, so the catalog record stays
// authoritative even when cleanup fails.
func (s *catalogService) UpdateSaree(ctx context.Context, id uuid.UUID, input UpdateSareeInput) (*domain.Saree, error) {
	existing, err := s.sareeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProductName != nil {
		name := strings.TrimSpace(*input.ProductName)
		if name == "" {
			return nil, validationError("product name cannot be empty")
		}
		existing.ProductName = name
	}
	if input.CategoryID != nil {
		// New references must exist at the time they are set.
		if _, err := s.categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
		existing.CategoryID = input.CategoryID
	}

	price := existing.Price
	if input.Price != nil {
		price = *input.Price
	}
	offerPrice := existing.OfferPrice
	if input.OfferPrice != nil {
		offerPrice = input.OfferPrice
	}
	if err := validatePricing(price, offerPrice); err != nil {
		return nil, err
	}
	existing.Price = price
	existing.OfferPrice = offerPrice

	if input.Rating != nil {
		rating, err := normalizeRating(input.Rating)
		if err != nil {
			return nil, err
		}
		existing.Rating = rating
	}

	// Per-slot image merge: a new upload or an explicit delete
	// touches only its own slot.
	stale := []string{}
	uploaded := []string{}
	for slot := 0; slot < domain.ImageSlotCount; slot++ {
		old := existing.ImageSlots()[slot]

		switch {
		case input.Images[slot] != nil:
			url, err := s.mediaStore.Upload(ctx, *input.Images[slot])
			if err != nil {
				s.cleanupURLs(ctx, uploaded)
				return nil, err
			}
			uploaded = append(uploaded, url)
			existing.SetImageSlot(slot, &url)
			if old != nil {
				stale = append(stale, *old)
			}
		case input.DeleteSlots[slot]:
			existing.SetImageSlot(slot, nil)
			if old != nil {
				stale = append(stale, *old)
			}
		}
	}

	existing.UpdatedAt = time.Now()

	if err := s.sareeRepo.Update(ctx, existing); err != nil {
		s.cleanupURLs(ctx, uploaded)
		return nil, err
	}

	// The row is authoritative now; stale media cleanup is best-effort.
	s.cleanupURLs(ctx, stale)

	return s.sareeRepo.FindByID(ctx, id)
}

// DeleteSaree removes the row first, then issues one best-effort
// media deletion per occupied slot.
func (s *catalogService) DeleteSaree(ctx context.Context, id uuid.UUID) error {
	saree, err := s.sareeRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.sareeRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cleanupURLs(ctx, saree.ImageURLs())

	return nil
}

func (s *catalogService) GetSaree(ctx context.Context, id uuid.UUID) (*domain.Saree, error) {
	return s.sareeRepo.FindByID(ctx, id)
}

func (s *catalogService) ListSarees(ctx context.Context, filter repository.SareeFilter) ([]*domain.Saree, error) {
	return s.sareeRepo.List(ctx, filter)
}

// cleanupURLs deletes media objects best-effort. Failures are logged,
// never propagated: a dangling unused image is a recoverable cost
// leak, not a correctness bug.
func (s *catalogService) cleanupURLs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.mediaStore.Delete(ctx, url); err != nil {
			s.logger.Warn("Failed to delete media object",
				zap.String("url", url),
				zap.Error(err),
			)
		}
	}
}

func validatePricing(price float64, offerPrice *float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return validationError("price must be a positive number")
	}
	if offerPrice != nil {
		op := *offerPrice
		if math.IsNaN(op) || math.IsInf(op, 0) || op <= 0 {
			return validationError("offer price must be a positive number")
		}
		if op > price {
			return validationError("offer price cannot exceed price")
		}
	}
	return nil
}

// normalizeRating validates the rating range and rounds the accepted
// value to one decimal place.
func normalizeRating(rating *float64) (*float64, error) {
	if rating == nil {
		return nil, nil
	}
	r := *rating
	if math.IsNaN(r) || r < 0 || r > 5 {
		return nil, validationError("rating must be between 0 and 5")
	}
	rounded := math.Round(r*10) / 10
	return &rounded, nil
}
