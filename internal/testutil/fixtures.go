package testutil

import (
	"strings"
	"sync"
	"testing"

	"xhubsell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture user.
const Password = "Password123!"

var (
	hashOnce sync.Once
	hashed   string
)

// PasswordHash returns a low-cost bcrypt hash of Password.
func PasswordHash() string {
	hashOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		hashed = string(b)
	})
	return hashed
}

// NewUser returns an unsaved user with fake identity fields.
func NewUser(overrides ...func(*models.User)) *models.User {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	u := &models.User{
		Email:     strings.ToLower(gofakeit.Username()) + "." + gofakeit.LetterN(6) + "@example.com",
		Username:  strings.ToLower(first) + gofakeit.DigitN(4),
		Password:  PasswordHash(),
		FirstName: first,
		LastName:  last,
		Avatar:    gofakeit.URL(),
		Role:      models.RoleClient,
		Language:  models.LanguageEN,
	}
	for _, o := range overrides {
		o(u)
	}
	return u
}

// NewSellerProfile returns an unsaved ACTIVE profile for userID.
func NewSellerProfile(userID uint, overrides ...func(*models.SellerProfile)) *models.SellerProfile {
	rate := float64(gofakeit.Number(20, 150))
	exp := gofakeit.Number(1, 15)
	p := &models.SellerProfile{
		UserID:      userID,
		Title:       gofakeit.JobTitle(),
		Description: gofakeit.Sentence(12),
		Bio:         gofakeit.Sentence(20),
		HourlyRate:  &rate,
		Experience:  &exp,
		Location:    gofakeit.City(),
		Languages:   []string{"EN"},
		Skills:      []string{gofakeit.HackerNoun(), gofakeit.HackerVerb()},
		Status:      models.SellerStatusActive,
		Rating:      gofakeit.Float64Range(3, 5),
		ReviewCount: gofakeit.Number(0, 50),
	}
	for _, o := range overrides {
		o(p)
	}
	return p
}

// CreateUser persists u.
func CreateUser(t testing.TB, db *gorm.DB, u *models.User) *models.User {
	t.Helper()
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", u.Username, err)
	}
	return u
}

// CreateSeller persists a SELLER user and its profile.
func CreateSeller(t testing.TB, db *gorm.DB, username string, overrides ...func(*models.SellerProfile)) *models.SellerProfile {
	t.Helper()
	u := CreateUser(t, db, NewUser(func(u *models.User) {
		u.Username = username
		u.Email = username + "@example.com"
		u.Role = models.RoleSeller
	}))
	p := NewSellerProfile(u.ID, overrides...)
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create seller profile for %s: %v", username, err)
	}
	return p
}

// CreateCategory persists a category with the given slug.
func CreateCategory(t testing.TB, db *gorm.DB, slug, nameEn string) *models.Category {
	t.Helper()
	c := &models.Category{NameEn: nameEn, NameRu: nameEn, Slug: slug, Icon: "folder"}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create category %s: %v", slug, err)
	}
	return c
}

// LinkCategory links a seller to a category.
func LinkCategory(t testing.TB, db *gorm.DB, sellerID, categoryID uint) {
	t.Helper()
	if err := db.Create(&models.SellerCategory{SellerID: sellerID, CategoryID: categoryID}).Error; err != nil {
		t.Fatalf("link seller %d to category %d: %v", sellerID, categoryID, err)
	}
}
