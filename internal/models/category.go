package models

import "time"

// Category is an entry of the static service taxonomy.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NameEn      string    `gorm:"column:name_en;size:120;not null" json:"nameEn"`
	NameRu      string    `gorm:"column:name_ru;size:120;not null" json:"nameRu"`
	Slug        string    `gorm:"size:64;not null;uniqueIndex" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"size:64" json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// SellerCategory links a seller profile to a category.
// Rows are ordered by ID to find a seller's primary category.
type SellerCategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SellerID   uint      `gorm:"not null;uniqueIndex:idx_seller_categories_pair" json:"sellerId"`
	CategoryID uint      `gorm:"not null;uniqueIndex:idx_seller_categories_pair;index" json:"categoryId"`
	Category   Category  `gorm:"foreignKey:CategoryID" json:"category"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (SellerCategory) TableName() string {
	return "seller_categories"
}

// CategoryWithCount is a category annotated with its distinct seller count.
type CategoryWithCount struct {
	Category
	SellerCount int64 `json:"sellerCount"`
}
