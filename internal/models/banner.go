package models

import "time"

// BannerPosition is the page slot a banner is rendered in.
type BannerPosition string

const (
	BannerPositionTop     BannerPosition = "top"
	BannerPositionInline  BannerPosition = "inline"
	BannerPositionSidebar BannerPosition = "sidebar"
)

// Banner is a promotional placement.
type Banner struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	ImageURL    string         `gorm:"size:500" json:"imageUrl"`
	Link        string         `gorm:"size:500" json:"link"`
	Position    BannerPosition `gorm:"type:varchar(16);not null;index" json:"position"`
	IsActive    bool           `gorm:"not null" json:"isActive"`
	IsExternal  bool           `gorm:"not null;default:false" json:"isExternal"`
	Impressions int64          `gorm:"not null;default:0" json:"impressions"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for GORM.
func (Banner) TableName() string {
	return "banners"
}

// AnnouncementPriority orders announcements in the ticker.
type AnnouncementPriority string

const (
	PriorityHigh   AnnouncementPriority = "high"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityLow    AnnouncementPriority = "low"
)

// Weight returns the sort weight of the priority; higher comes first.
func (p AnnouncementPriority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Announcement is a short platform notice.
type Announcement struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	Text      string               `gorm:"type:text;not null" json:"text"`
	Link      string               `gorm:"size:500" json:"link,omitempty"`
	Priority  AnnouncementPriority `gorm:"type:varchar(16);not null;default:'medium'" json:"priority"`
	IsActive  bool                 `gorm:"not null" json:"isActive"`
	CreatedAt time.Time            `json:"createdAt"`
}

// TableName specifies the table name for GORM.
func (Announcement) TableName() string {
	return "announcements"
}
