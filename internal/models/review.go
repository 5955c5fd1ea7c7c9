package models

import "time"

// Review is a client rating of a seller. Seller rating and review count are
// aggregates over these rows.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SellerID  uint      `gorm:"not null;index" json:"sellerId"`
	AuthorID  uint      `gorm:"not null;index" json:"authorId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Review) TableName() string {
	return "reviews"
}
