// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role is the account type of a user.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleSeller    Role = "SELLER"
	RoleRecruiter Role = "RECRUITER"
	RoleClient    Role = "CLIENT"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleSeller, RoleRecruiter, RoleClient:
		return r, true
	}
	return "", false
}

// Language is the preferred interface language of a user.
type Language string

const (
	LanguageEN Language = "EN"
	LanguageRU Language = "RU"
)

// ParseLanguage normalizes s and reports whether it names a supported language.
func ParseLanguage(s string) (Language, bool) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	switch l {
	case LanguageEN, LanguageRU:
		return l, true
	}
	return "", false
}

// User represents an account on the marketplace.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Email         string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Username      string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Password      string         `gorm:"not null" json:"-"`
	FirstName     string         `gorm:"size:100" json:"firstName"`
	LastName      string         `gorm:"size:100" json:"lastName"`
	Avatar        string         `json:"avatar"`
	Role          Role           `gorm:"type:varchar(20);not null;default:'CLIENT'" json:"role"`
	Language      Language       `gorm:"type:varchar(2);not null;default:'EN'" json:"language"`
	IsVerified    bool           `gorm:"not null;default:false" json:"isVerified"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	SellerProfile *SellerProfile `gorm:"foreignKey:UserID" json:"sellerProfile,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name, trimmed.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
