package models

import "time"

// FoodItem is a catalog entry owned by a vendor. Orders snapshot the name
// and price at purchase time, so edits here never rewrite past orders.
type FoodItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VendorID    uint      `gorm:"not null;index" json:"vendor_id"`
	Vendor      User      `gorm:"foreignKey:VendorID" json:"-"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string    `gorm:"type:varchar(100)" json:"category"`
	Description string    `gorm:"type:text" json:"description"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
