package models

import "time"

// Review is a shopper's rating of a product.
type Review struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"Id"`
	ProductID        int64     `gorm:"column:product_id;not null;index" json:"productId"`
	OrderID          *string   `gorm:"column:order_id" json:"orderId,omitempty"`
	Rating           int       `gorm:"column:rating;not null" json:"rating"`
	Title            string    `gorm:"column:title;not null" json:"title"`
	Comment          string    `gorm:"column:comment;not null" json:"comment"`
	CustomerName     string    `gorm:"column:customer_name;not null" json:"customerName"`
	CustomerEmail    string    `gorm:"column:customer_email;not null;index" json:"customerEmail"`
	VerifiedPurchase bool      `gorm:"column:verified_purchase;not null;default:false" json:"verifiedPurchase"`
	HelpfulCount     int       `gorm:"column:helpful_count;not null;default:0" json:"helpfulCount"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
