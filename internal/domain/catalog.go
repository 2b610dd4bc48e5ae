package domain

import (
	"time"

	"github.com/google/uuid"
)

// ImageSlotCount is the fixed number of image slots a saree carries.
// Slots are independently addressable; an empty slot is nil, not a
// shifted list position.
const ImageSlotCount = 3

// Category represents a saree category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Saree represents a product in the catalog. CategoryID is nullable so
// a saree survives deletion of its category with the reference cleared.
type Saree struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ProductName string     `json:"productName" db:"product_name"`
	CategoryID  *uuid.UUID `json:"categoryId" db:"category_id"`
	Price       float64    `json:"price" db:"price"`
	OfferPrice  *float64   `json:"offerPrice" db:"offer_price"`
	Rating      *float64   `json:"rating" db:"rating"`
	Image1      *string    `json:"image1" db:"image1"`
	Image2      *string    `json:"image2" db:"image2"`
	Image3      *string    `json:"image3" db:"image3"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	// Category is the joined category record, nil when the saree is
	// unlinked. Populated on reads, never written through.
	Category *Category `json:"category,omitempty" db:"-"`
}

// ImageSlots returns the three image slots in slot order.
func (s *Saree) ImageSlots() [ImageSlotCount]*string {
	return [ImageSlotCount]*string{s.Image1, s.Image2, s.Image3}
}

// SetImageSlot assigns a URL to the given slot index (0-based).
// A nil url clears the slot. Indexes outside [0,2] are ignored.
func (s *Saree) SetImageSlot(slot int, url *string) {
	switch slot {
	case 0:
		s.Image1 = url
	case 1:
		s.Image2 = url
	case 2:
		s.Image3 = url
	}
}

// ImageURLs returns the URLs of all occupied slots, in slot order.
func (s *Saree) ImageURLs() []string {
	urls := []string{}
	for _, slot := range s.ImageSlots() {
		if slot != nil && *slot != "" {
			urls = append(urls, *slot)
		}
	}
	return urls
}
