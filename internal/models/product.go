package models

import "time"

// Product represents a product in the store.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null;index"`
}

// ProductInput is a candidate set of product fields as received from a
// client. A nil field was absent from the payload. Quantity is capped at the
// largest integer a JSON number carries exactly.
type ProductInput struct {
	Name        *string  `json:"name" form:"name" validate:"required,min=1"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Quantity    *float64 `json:"quantity" form:"quantity" validate:"omitempty,gte=0,lte=9007199254740991,wholenumber"`
	Description *string  `json:"description" form:"description"`
}

// ApplyPatch merges patch over current and returns the resulting candidate.
// Identifier and creation time are not part of a candidate and never change.
func ApplyPatch(current Product, patch ProductInput) ProductInput {
	merged := ProductInput{
		Name:        &current.Name,
		Price:       &current.Price,
		Description: &current.Description,
	}
	q := float64(current.Quantity)
	merged.Quantity = &q

	if patch.Name != nil {
		merged.Name = patch.Name
	}
	if patch.Price != nil {
		merged.Price = patch.Price
	}
	if patch.Quantity != nil {
		merged.Quantity = patch.Quantity
	}
	if patch.Description != nil {
		merged.Description = patch.Description
	}
	return merged
}
