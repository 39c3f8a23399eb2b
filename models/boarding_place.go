package models

import "time"

// BoardingPlace is a room/annex listing near campus.
type BoardingPlace struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Owner       User      `gorm:"foreignKey:OwnerID" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Address     string    `gorm:"type:text;not null" json:"address"`
	MonthlyRent float64   `gorm:"type:decimal(10,2)" json:"monthly_rent"`
	Description string    `gorm:"type:text" json:"description"`
	Approved    bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
