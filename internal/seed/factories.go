// Package seed loads the built-in taxonomy and the demo marketplace. It is
// used by cmd/seed, by runtime bootstrap and by tests.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"xhubsell/internal/models"
	"xhubsell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var (
	fakeLanguages = []string{"EN", "RU", "ES", "FR", "DE"}
	fakeStatuses  = []models.SellerStatus{
		models.SellerStatusActive, models.SellerStatusActive, models.SellerStatusActive,
		models.SellerStatusActive, models.SellerStatusInactive, models.SellerStatusPendingVerification,
	}
)

// Factory builds fake sellers and persists them.
type Factory struct {
	users   repository.UserRepository
	sellers repository.SellerRepository
	opts    Options
	// password is the bcrypt hash assigned to every built user.
	password string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. db may be nil in DryRun mode.
func NewFactory(db *gorm.DB, opts Options, passwordHash string) *Factory {
	if opts.RandSeed != 0 {
		gofakeit.Seed(opts.RandSeed)
	}
	f := &Factory{opts: opts, password: passwordHash, nextID: 1000}
	if db != nil {
		f.users = repository.NewUserRepository(db)
		f.sellers = repository.NewSellerRepository(db)
	}
	return f
}

// BuildSeller returns an unsaved seller account and profile with fake content.
func (f *Factory) BuildSeller(overrides ...func(*models.User, *models.SellerProfile)) (*models.User, *models.SellerProfile) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(gofakeit.LetterN(1)+gofakeit.Username()) + gofakeit.DigitN(4)
	username = sanitizeUsername(username)

	user := &models.User{
		Email:     username + "@demo.xhubsell.com",
		Username:  username,
		Password:  f.password,
		FirstName: first,
		LastName:  last,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Role:      models.RoleSeller,
		Language:  models.LanguageEN,
	}

	rate := float64(gofakeit.Number(15, 180))
	exp := gofakeit.Number(0, 20)
	langs := []string{"EN"}
	if extra := fakeLanguages[gofakeit.Number(1, len(fakeLanguages)-1)]; gofakeit.Bool() {
		langs = append(langs, extra)
	}
	skills := make([]string, 0, 4)
	for range gofakeit.Number(2, 4) {
		skills = append(skills, gofakeit.HackerNoun())
	}
	profile := &models.SellerProfile{
		Title:       gofakeit.JobTitle(),
		Description: gofakeit.Sentence(12),
		Bio:         gofakeit.Paragraph(1, 3, 10, " "),
		HourlyRate:  &rate,
		Experience:  &exp,
		Location:    gofakeit.City() + ", " + gofakeit.CountryAbr(),
		Languages:   langs,
		Skills:      skills,
		Status:      fakeStatuses[gofakeit.Number(0, len(fakeStatuses)-1)],
	}

	for _, override := range overrides {
		override(user, profile)
	}
	return user, profile
}

// CreateSeller builds a fake seller and persists it with the given category links.
func (f *Factory) CreateSeller(ctx context.Context, categoryIDs []uint, overrides ...func(*models.User, *models.SellerProfile)) (*models.SellerProfile, error) {
	user, profile := f.BuildSeller(overrides...)

	if f.opts.DryRun || f.users == nil {
		f.nextID++
		user.ID = f.nextID
		profile.ID = f.nextID
		profile.UserID = user.ID
		slog.Debug("[dry-run] CreateSeller", slog.String("username", user.Username))
		return profile, nil
	}

	if err := f.users.Create(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("create seller %s: %w", user.Username, err)
	}
	if len(categoryIDs) > 0 {
		if err := f.sellers.SetCategories(ctx, profile.ID, categoryIDs); err != nil {
			return nil, err
		}
	}
	return profile, nil
}

// sanitizeUsername keeps characters accepted by registration.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 30 {
		out = out[:30]
	}
	return out
}
