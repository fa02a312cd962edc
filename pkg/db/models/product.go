package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/artisanmarket/storefront/pkg/types"
)

// Product is a catalog listing.
type Product struct {
	ID          int64                   `gorm:"column:id;primaryKey;autoIncrement" json:"Id"`
	Name        string                  `gorm:"column:name;not null" json:"name"`
	Description string                  `gorm:"column:description;not null;default:''" json:"description"`
	Price       decimal.Decimal         `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Category    string                  `gorm:"column:category;not null;index" json:"category"`
	Images      []string                `gorm:"column:images;type:jsonb;serializer:json" json:"images"`
	Featured    bool                    `gorm:"column:featured;not null;default:false" json:"featured"`
	Stock       int                     `gorm:"column:stock;not null;default:0" json:"stock"`
	Rating      float64                 `gorm:"column:rating;not null;default:0" json:"rating"`
	ReviewCount int                     `gorm:"column:review_count;not null;default:0" json:"reviewCount"`
	Variations  []types.VariationOption `gorm:"column:variations;type:jsonb;serializer:json" json:"variations,omitempty"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// PrimaryImage is the first image, or empty when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
