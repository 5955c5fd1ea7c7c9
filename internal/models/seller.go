package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// SellerStatus is the moderation state of a seller profile.
type SellerStatus string

const (
	// SellerStatusActive sellers are visible in public discovery.
	SellerStatusActive    SellerStatus = "ACTIVE"
	SellerStatusInactive  SellerStatus = "INACTIVE"
	SellerStatusSuspended SellerStatus = "SUSPENDED"

	// SellerStatusPendingVerification is the initial state of every new profile.
	SellerStatusPendingVerification SellerStatus = "PENDING_VERIFICATION"
)

// SellerStatuses lists every valid status.
var SellerStatuses = []SellerStatus{
	SellerStatusActive,
	SellerStatusInactive,
	SellerStatusSuspended,
	SellerStatusPendingVerification,
}

// ParseSellerStatus normalizes s and reports whether it is a valid status.
func ParseSellerStatus(s string) (SellerStatus, bool) {
	st := SellerStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range SellerStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// SellerProfile is the sellable identity of a user with role SELLER.
type SellerProfile struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;uniqueIndex" json:"userId"`
	User        *User            `gorm:"foreignKey:UserID" json:"-"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Description string           `gorm:"type:text" json:"description"`
	Bio         string           `gorm:"type:text" json:"bio"`
	HourlyRate  *float64         `gorm:"type:numeric(10,2)" json:"hourlyRate"`
	Experience  *int             `json:"experience"`
	Location    string           `gorm:"size:200" json:"location"`
	Languages   pq.StringArray   `gorm:"type:text[]" json:"languages"`
	Skills      pq.StringArray   `gorm:"type:text[]" json:"skills"`
	Status      SellerStatus     `gorm:"type:varchar(32);not null;default:'PENDING_VERIFICATION';index" json:"status"`
	Rating      float64          `gorm:"not null;default:0" json:"rating"`
	ReviewCount int              `gorm:"not null;default:0" json:"reviewCount"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Categories  []SellerCategory `gorm:"foreignKey:SellerID" json:"categories,omitempty"`
}

// TableName specifies the table name for GORM.
func (SellerProfile) TableName() string {
	return "seller_profiles"
}

// BeforeSave stores absent arrays as empty; the columns are NOT NULL and a
// nil pq.StringArray encodes as NULL.
func (p *SellerProfile) BeforeSave(*gorm.DB) error {
	if p.Languages == nil {
		p.Languages = pq.StringArray{}
	}
	if p.Skills == nil {
		p.Skills = pq.StringArray{}
	}
	return nil
}

// DefaultSellerTitle derives a profile title from the owner's full name,
// falling back to the username.
func DefaultSellerTitle(u *User) string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}
