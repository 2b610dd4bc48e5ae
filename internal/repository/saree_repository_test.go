package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/domain"

	"github.com/google/uuid"
)

func TestSareeRepository_CreateAndFindJoinsCategory(t *testing.T) {
	cleanTables(t)
	categoryRepo := NewCategoryRepository(testDB)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, categoryRepo, "Silk")

	offerPrice := 4000.0
	rating := 4.7
	saree := &domain.Saree{
		ID:          uuid.New(),
		ProductName: "Banarasi Silk",
		CategoryID:  &category.ID,
		Price:       5000,
		OfferPrice:  &offerPrice,
		Rating:      &rating,
		Image1:      strPtr("http://localhost:9000/saree-images/sarees/front-1.jpg"),
		Image3:      strPtr("http://localhost:9000/saree-images/sarees/border-1.jpg"),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := sareeRepo.Create(ctx, saree); err != nil {
		t.Fatalf("failed to create saree: %v", err)
	}

	found, err := sareeRepo.FindByID(ctx, saree.ID)
	if err != nil {
		t.Fatalf("failed to find saree: %v", err)
	}

	if found.ProductName != "Banarasi Silk" {
		t.Errorf("product name mismatch: got %q", found.ProductName)
	}
	if found.Price != 5000 {
		t.Errorf("price mismatch: got %v", found.Price)
	}
	if found.OfferPrice == nil || *found.OfferPrice != 4000 {
		t.Errorf("offer price mismatch: got %v", found.OfferPrice)
	}
	if found.Rating == nil || *found.Rating != 4.7 {
		t.Errorf("rating mismatch: got %v", found.Rating)
	}
	if found.Image1 == nil || found.Image2 != nil || found.Image3 == nil {
		t.Errorf("image slots mismatch: %v %v %v", found.Image1, found.Image2, found.Image3)
	}
	if found.Category == nil || found.Category.Name != "Silk" {
		t.Errorf("joined category mismatch: %+v", found.Category)
	}
}

func TestSareeRepository_FindWithoutCategory(t *testing.T) {
	cleanTables(t)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	saree := createTestSaree(t, sareeRepo, "Uncategorized Saree", nil, [3]*string{})

	found, err := sareeRepo.FindByID(ctx, saree.ID)
	if err != nil {
		t.Fatalf("failed to find saree: %v", err)
	}
	if found.CategoryID != nil {
		t.Errorf("expected nil category id, got %v", found.CategoryID)
	}
	if found.Category != nil {
		t.Errorf("expected no joined category, got %+v", found.Category)
	}
}

func TestSareeRepository_UpdatePreservesSlotIdentity(t *testing.T) {
	cleanTables(t)
	categoryRepo := NewCategoryRepository(testDB)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	category := createTestCategory(t, categoryRepo, "Silk")
	saree := createTestSaree(t, sareeRepo, "Banarasi Silk", &category.ID, [3]*string{
		strPtr("http://localhost:9000/saree-images/sarees/front-1.jpg"),
		strPtr("http://localhost:9000/saree-images/sarees/drape-1.jpg"),
		strPtr("http://localhost:9000/saree-images/sarees/border-1.jpg"),
	})

	saree.Image2 = strPtr("http://localhost:9000/saree-images/sarees/drape-2.jpg")
	saree.UpdatedAt = time.Now()
	if err := sareeRepo.Update(ctx, saree); err != nil {
		t.Fatalf("failed to update saree: %v", err)
	}

	found, err := sareeRepo.FindByID(ctx, saree.ID)
	if err != nil {
		t.Fatalf("failed to find saree: %v", err)
	}
	if found.Image1 == nil || *found.Image1 != "http://localhost:9000/saree-images/sarees/front-1.jpg" {
		t.Errorf("slot 1 changed: %v", found.Image1)
	}
	if found.Image2 == nil || *found.Image2 != "http://localhost:9000/saree-images/sarees/drape-2.jpg" {
		t.Errorf("slot 2 not replaced: %v", found.Image2)
	}
	if found.Image3 == nil || *found.Image3 != "http://localhost:9000/saree-images/sarees/border-1.jpg" {
		t.Errorf("slot 3 changed: %v", found.Image3)
	}
}

func TestSareeRepository_UpdateMissing(t *testing.T) {
	cleanTables(t)
	sareeRepo := NewSareeRepository(testDB)

	missing := &domain.Saree{
		ID:          uuid.New(),
		ProductName: "Ghost",
		Price:       1,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	err := sareeRepo.Update(context.Background(), missing)
	if !errors.Is(err, ErrSareeNotFound) {
		t.Fatalf("expected ErrSareeNotFound, got %v", err)
	}
}

func TestSareeRepository_Delete(t *testing.T) {
	cleanTables(t)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	saree := createTestSaree(t, sareeRepo, "Banarasi Silk", nil, [3]*string{})

	if err := sareeRepo.Delete(ctx, saree.ID); err != nil {
		t.Fatalf("failed to delete saree: %v", err)
	}
	if _, err := sareeRepo.FindByID(ctx, saree.ID); !errors.Is(err, ErrSareeNotFound) {
		t.Errorf("expected ErrSareeNotFound after delete, got %v", err)
	}

	if err := sareeRepo.Delete(ctx, uuid.New()); !errors.Is(err, ErrSareeNotFound) {
		t.Errorf("expected ErrSareeNotFound for missing row, got %v", err)
	}
}

func TestSareeRepository_ListFilters(t *testing.T) {
	cleanTables(t)
	categoryRepo := NewCategoryRepository(testDB)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	silk := createTestCategory(t, categoryRepo, "Silk")
	cotton := createTestCategory(t, categoryRepo, "Cotton")

	createTestSaree(t, sareeRepo, "Banarasi Silk", &silk.ID, [3]*string{})
	createTestSaree(t, sareeRepo, "Kanjivaram Silk", &silk.ID, [3]*string{})
	createTestSaree(t, sareeRepo, "Handloom Cotton", &cotton.ID, [3]*string{})

	tests := []struct {
		name   string
		filter SareeFilter
		want   int
	}{
		{"no filter", SareeFilter{}, 3},
		{"category exact", SareeFilter{CategoryName: "Silk"}, 2},
		{"category case-insensitive", SareeFilter{CategoryName: "sIlK"}, 2},
		{"unknown category yields empty", SareeFilter{CategoryName: "Organza"}, 0},
		{"product substring", SareeFilter{ProductName: "silk"}, 2},
		{"product substring mid-word", SareeFilter{ProductName: "jivaram"}, 1},
		{"combined filters", SareeFilter{CategoryName: "Silk", ProductName: "Banarasi"}, 1},
		{"combined filters disjoint", SareeFilter{CategoryName: "Cotton", ProductName: "Banarasi"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sarees, err := sareeRepo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(sarees) != tt.want {
				t.Errorf("expected %d sarees, got %d", tt.want, len(sarees))
			}
		})
	}
}

func TestSareeRepository_ListNewestFirst(t *testing.T) {
	cleanTables(t)
	sareeRepo := NewSareeRepository(testDB)
	ctx := context.Background()

	now := time.Now()
	names := []string{"Oldest", "Middle", "Newest"}
	for i, name := range names {
		saree := &domain.Saree{
			ID:          uuid.New(),
			ProductName: name,
			Price:       100,
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
			UpdatedAt:   now.Add(time.Duration(i) * time.Minute),
		}
		if err := sareeRepo.Create(ctx, saree); err != nil {
			t.Fatalf("failed to create saree: %v", err)
		}
	}

	sarees, err := sareeRepo.List(ctx, SareeFilter{})
	if err != nil {
		t.Fatalf("failed to list sarees: %v", err)
	}
	if len(sarees) != 3 {
		t.Fatalf("expected 3 sarees, got %d", len(sarees))
	}
	if sarees[0].ProductName != "Newest" || sarees[2].ProductName != "Oldest" {
		t.Errorf("unexpected order: %q, %q, %q",
			sarees[0].ProductName, sarees[1].ProductName, sarees[2].ProductName)
	}
}
