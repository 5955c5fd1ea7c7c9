package database

import "xhubsell/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.SellerProfile{},
		&models.Category{},
		&models.SellerCategory{},
		&models.Favorite{},
		&models.Review{},
		&models.Banner{},
		&models.Announcement{},
	}
}
