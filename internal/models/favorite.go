package models

import "time"

// Favorite records that a user bookmarked a seller.
// At most one row exists per (user, seller) pair.
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_seller" json:"userId"`
	SellerID  uint      `gorm:"not null;uniqueIndex:idx_favorites_user_seller;index" json:"sellerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Favorite) TableName() string {
	return "favorites"
}
