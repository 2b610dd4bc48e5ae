package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SaiRama-Doddi/Matrixindrani-Silks/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrSareeNotFound = errors.New("saree not found")
)

// SareeFilter narrows a saree listing. Zero values mean "no filter".
type SareeFilter struct {
	// CategoryName matches the joined category name exactly,
	// case-insensitively.
	CategoryName string
	// ProductName is a case-insensitive substring match.
	ProductName string
}

// SareeRepository defines the interface for saree data access
type SareeRepository interface {
	Create(ctx context.Context, saree *domain.Saree) error
	Update(ctx context.Context, saree *domain.Saree) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Saree, error)
	List(ctx context.Context, filter SareeFilter) ([]*domain.Saree, error)
}

type sareeRepository struct {
	db *sql.DB
}

// NewSareeRepository creates a new instance of SareeRepository
func NewSareeRepository(db *sql.DB) SareeRepository {
	return &sareeRepository{db: db}
}

// Create inserts a new saree into the database using parameterized queries
func (r *sareeRepository) Create(ctx context.Context, saree *domain.Saree) error {
	query := `
		INSERT INTO sarees (id, product_name, category_id, price, offer_price, rating,
		                    image1, image2, image3, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		saree.ID,
		saree.ProductName,
		saree.CategoryID,
		saree.Price,
		saree.OfferPrice,
		saree.Rating,
		saree.Image1,
		saree.Image2,
		saree.Image3,
		saree.CreatedAt,
		saree.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create saree: %w", err)
	}

	return nil
}

// Update writes a fully merged saree row. Field-presence merging is
// the service's concern; the repository always persists the whole
// entity so slot identity is preserved exactly as handed in.
func (r *sareeRepository) Update(ctx context.Context, saree *domain.Saree) error {
	query := `
		UPDATE sarees
		SET product_name = $2, category_id = $3, price = $4, offer_price = $5,
		    rating = $6, image1 = $7, image2 = $8, image3 = $9, updated_at = $10
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		saree.ID,
		saree.ProductName,
		saree.CategoryID,
		saree.Price,
		saree.OfferPrice,
		saree.Rating,
		saree.Image1,
		saree.Image2,
		saree.Image3,
		saree.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update saree: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSareeNotFound
	}

	return nil
}

// Delete removes a saree row. Media cleanup belongs to the caller,
// which collects the image URLs before calling this.
func (r *sareeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sarees WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete saree: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrSareeNotFound
	}

	return nil
}

const sareeSelectColumns = `
	s.id, s.product_name, s.category_id, s.price, s.offer_price, s.rating,
	s.image1, s.image2, s.image3, s.created_at, s.updated_at,
	c.id, c.name, c.created_at
`

func scanSaree(scanner interface{ Scan(...interface{}) error }) (*domain.Saree, error) {
	saree := &domain.Saree{}
	var (
		catID        *uuid.UUID
		catName      *string
		catCreatedAt sql.NullTime
	)

	err := scanner.Scan(
		&saree.ID,
		&saree.ProductName,
		&saree.CategoryID,
		&saree.Price,
		&saree.OfferPrice,
		&saree.Rating,
		&saree.Image1,
		&saree.Image2,
		&saree.Image3,
		&saree.CreatedAt,
		&saree.UpdatedAt,
		&catID,
		&catName,
		&catCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if catID != nil && catName != nil {
		saree.Category = &domain.Category{
			ID:        *catID,
			Name:      *catName,
			CreatedAt: catCreatedAt.Time,
		}
	}

	return saree, nil
}

// FindByID retrieves a saree joined with its category, if any.
func (r *sareeRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Saree, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM sarees s
		LEFT JOIN categories c ON c.id = s.category_id
		WHERE s.id = $1
	`, sareeSelectColumns)

	saree, err := scanSaree(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSareeNotFound
		}
		return nil, fmt.Errorf("failed to find saree by ID: %w", err)
	}

	return saree, nil
}

// List retrieves sarees joined with their categories, newest first.
// A category-name filter that matches no category simply yields an
// empty result, not an error.
func (r *sareeRepository) List(ctx context.Context, filter SareeFilter) ([]*domain.Saree, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if strings.TrimSpace(filter.CategoryName) != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) = LOWER($%d)", argIndex))
		args = append(args, filter.CategoryName)
		argIndex++
	}

	if strings.TrimSpace(filter.ProductName) != "" {
		conditions = append(conditions, fmt.Sprintf("s.product_name ILIKE $%d", argIndex))
		args = append(args, "%"+filter.ProductName+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM sarees s
		LEFT JOIN categories c ON c.id = s.category_id
		%s
		ORDER BY s.created_at DESC
	`, sareeSelectColumns, whereClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sarees: %w", err)
	}
	defer rows.Close()

	sarees := []*domain.Saree{}
	for rows.Next() {
		saree, err := scanSaree(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saree: %w", err)
		}
		sarees = append(sarees, saree)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sarees: %w", err)
	}

	return sarees, nil
}
