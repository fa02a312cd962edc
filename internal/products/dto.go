package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/pkg/db/models"
	pkgerrors "github.com/artisanmarket/storefront/pkg/errors"
	"github.com/artisanmarket/storefront/pkg/pagination"
	"github.com/artisanmarket/storefront/pkg/types"
)

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	Images      []string
	Featured    bool
	Stock       int
	Rating      float64
	ReviewCount int
	Variations  []types.VariationOption
}

// UpdateInput holds optional mutation values; nil fields keep their value.
type UpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Images      *[]string
	Featured    *bool
	Stock       *int
	Rating      *float64
	ReviewCount *int
	Variations  *[]types.VariationOption
}

// ListResult is one page of a catalog listing.
type ListResult struct {
	Items []models.Product `json:"items"`
	Page  pagination.Page  `json:"page"`
}

func (in CreateInput) model() *models.Product {
	return &models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		Images:      in.Images,
		Featured:    in.Featured,
		Stock:       in.Stock,
		Rating:      in.Rating,
		ReviewCount: in.ReviewCount,
		Variations:  in.Variations,
	}
}

func (in UpdateInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.Variations != nil {
		p.Variations = *in.Variations
	}
}

func validateProduct(p *models.Product) error {
	var fields []pkgerrors.FieldError
	if p.Name == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "name", Message: "name is required"})
	}
	if p.Category == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "category", Message: "category is required"})
	}
	if p.Price.IsNegative() {
		fields = append(fields, pkgerrors.FieldError{Field: "price", Message: "price cannot be negative"})
	}
	if p.Stock < 0 {
		fields = append(fields, pkgerrors.FieldError{Field: "stock", Message: "stock cannot be negative"})
	}
	if p.Rating < 0 || p.Rating > 5 {
		fields = append(fields, pkgerrors.FieldError{Field: "rating", Message: "rating must be between 0 and 5"})
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(fields)
}
