// Package testutil provides shared databases and fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sqliteSeq atomic.Int64

// sqliteSchema mirrors the PostgreSQL migrations with SQLite types.
// Array columns are stored as their PostgreSQL text literal ("{EN,RU}").
var sqliteSchema = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		avatar TEXT,
		role TEXT NOT NULL DEFAULT 'CLIENT',
		language TEXT NOT NULL DEFAULT 'EN',
		is_verified BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	)`,
	`CREATE TABLE seller_profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL UNIQUE REFERENCES users (id),
		title TEXT NOT NULL,
		description TEXT,
		bio TEXT,
		hourly_rate NUMERIC,
		experience INTEGER,
		location TEXT,
		languages TEXT NOT NULL DEFAULT '{}',
		skills TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'PENDING_VERIFICATION',
		rating REAL NOT NULL DEFAULT 0,
		review_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name_en TEXT NOT NULL,
		name_ru TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		description TEXT,
		icon TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE seller_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller_id INTEGER NOT NULL REFERENCES seller_profiles (id),
		category_id INTEGER NOT NULL REFERENCES categories (id),
		created_at DATETIME,
		UNIQUE (seller_id, category_id)
	)`,
	`CREATE TABLE favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL REFERENCES users (id),
		seller_id INTEGER NOT NULL REFERENCES seller_profiles (id),
		created_at DATETIME,
		UNIQUE (user_id, seller_id)
	)`,
	`CREATE TABLE reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seller_id INTEGER NOT NULL REFERENCES seller_profiles (id),
		author_id INTEGER NOT NULL REFERENCES users (id),
		rating INTEGER NOT NULL,
		comment TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE banners (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		image_url TEXT,
		link TEXT,
		position TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_external BOOLEAN NOT NULL DEFAULT 0,
		impressions INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE announcements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		text TEXT NOT NULL,
		link TEXT,
		priority TEXT NOT NULL DEFAULT 'medium',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME
	)`,
}

// NewSQLiteDB opens a private in-memory database with the marketplace schema.
// The database lives until the test finishes.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, sqliteSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	for _, stmt := range sqliteSchema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create sqlite schema: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
