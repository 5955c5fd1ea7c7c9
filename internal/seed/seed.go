package seed

import (
	"context"
	"fmt"
	"log/slog"

	"xhubsell/internal/cache"
	"xhubsell/internal/models"
	"xhubsell/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password123"

// Options configuration for the seeder
type Options struct {
	// Clean truncates marketplace tables before seeding.
	Clean bool
	// ExtraSellers is the number of fake sellers added after the demo set.
	ExtraSellers int
	// SkipBcrypt hashes the demo password at minimum cost.
	SkipBcrypt bool
	// DryRun builds fake sellers without writing them.
	DryRun bool
	// RandSeed makes fake data reproducible when non-zero.
	RandSeed int64
}

// Report counts rows created by a seeding run.
type Report struct {
	Users        int
	Sellers      int
	Reviews      int
	ExtraSellers int
}

// seededTables lists marketplace tables in delete order.
var seededTables = []string{
	"favorites", "reviews", "seller_categories", "seller_profiles",
	"users", "banners", "announcements", "categories",
}

// BuiltIns upserts the category taxonomy, banners and announcements. It is
// idempotent and runs on every start when SEED_BUILT_INS is set.
func BuiltIns(ctx context.Context, db *gorm.DB) error {
	t, err := LoadTaxonomy()
	if err != nil {
		return err
	}
	if err := repository.NewCategoryRepository(db).Upsert(ctx, t.CategoryModels()); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := repository.NewBannerRepository(db).Upsert(ctx, t.BannerModels()); err != nil {
		return fmt.Errorf("seed banners: %w", err)
	}
	if err := repository.NewAnnouncementRepository(db).Upsert(ctx, t.AnnouncementModels()); err != nil {
		return fmt.Errorf("seed announcements: %w", err)
	}
	if err := resetSequences(ctx, db, "banners", "announcements"); err != nil {
		return err
	}
	slog.InfoContext(ctx, "built-in content seeded",
		slog.Int("categories", len(t.Categories)),
		slog.Int("banners", len(t.Banners)),
		slog.Int("announcements", len(t.Announcements)))
	return nil
}

// Seeder creates the demo marketplace.
type Seeder struct {
	db         *gorm.DB
	opts       Options
	users      repository.UserRepository
	sellers    repository.SellerRepository
	categories repository.CategoryRepository
	reviews    repository.ReviewRepository
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:         db,
		opts:       opts,
		users:      repository.NewUserRepository(db),
		sellers:    repository.NewSellerRepository(db),
		categories: repository.NewCategoryRepository(db),
		reviews:    repository.NewReviewRepository(db),
	}
}

// Run seeds built-ins, the demo accounts and their reviews, then the fake
// sellers. Accounts that already exist are left untouched, so repeated runs
// add only ExtraSellers.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	slog.InfoContext(ctx, "starting database seeding", slog.Int("extra_sellers", s.opts.ExtraSellers))

	if s.opts.Clean {
		if err := clearData(ctx, s.db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}
	if err := BuiltIns(ctx, s.db); err != nil {
		return nil, err
	}

	demo, err := LoadDemo()
	if err != nil {
		return nil, err
	}
	hash, err := s.passwordHash()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	accounts := make(map[string]*models.User, len(demo.Users)+len(demo.Sellers))
	for _, du := range demo.Users {
		u, created, err := s.ensureUser(ctx, du, hash, nil)
		if err != nil {
			return nil, err
		}
		accounts[u.Username] = u
		if created {
			report.Users++
		}
	}

	profiles := make(map[string]*models.SellerProfile, len(demo.Sellers))
	fresh := make(map[string]bool, len(demo.Sellers))
	for _, ds := range demo.Sellers {
		profile := &models.SellerProfile{
			Title:       ds.Title,
			Description: ds.Description,
			Bio:         ds.Bio,
			HourlyRate:  ds.HourlyRate,
			Experience:  ds.Experience,
			Location:    ds.Location,
			Languages:   ds.Languages,
			Skills:      ds.Skills,
			Status:      ds.Status,
		}
		user := ds.DemoUser
		user.Role = models.RoleSeller
		u, created, err := s.ensureUser(ctx, user, hash, profile)
		if err != nil {
			return nil, err
		}
		accounts[u.Username] = u
		if !created {
			continue
		}
		ids, err := s.categoryIDs(ctx, ds.Categories)
		if err != nil {
			return nil, err
		}
		if err := s.sellers.SetCategories(ctx, profile.ID, ids); err != nil {
			return nil, err
		}
		profiles[u.Username] = profile
		fresh[u.Username] = true
		report.Sellers++
	}

	if err := s.seedReviews(ctx, demo.Reviews, accounts, profiles, fresh, report); err != nil {
		return nil, err
	}

	if s.opts.ExtraSellers > 0 {
		n, err := s.seedExtraSellers(ctx, hash)
		if err != nil {
			return nil, err
		}
		report.ExtraSellers = n
	}

	if err := resetSequences(ctx, s.db, "users", "seller_profiles"); err != nil {
		return nil, err
	}
	cache.InvalidateCatalog(ctx)

	slog.InfoContext(ctx, "database seeding completed",
		slog.Int("users", report.Users),
		slog.Int("sellers", report.Sellers),
		slog.Int("reviews", report.Reviews),
		slog.Int("extra_sellers", report.ExtraSellers))
	return report, nil
}

func (s *Seeder) passwordHash() (string, error) {
	cost := bcrypt.DefaultCost
	if s.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash demo password: %w", err)
	}
	return string(b), nil
}

// ensureUser returns the existing account for du.Username or creates it.
func (s *Seeder) ensureUser(ctx context.Context, du DemoUser, hash string, profile *models.SellerProfile) (*models.User, bool, error) {
	existing, err := s.users.GetByUsername(ctx, du.Username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	lang := du.Language
	if lang == "" {
		lang = models.LanguageEN
	}
	u := &models.User{
		Email:      du.Email,
		Username:   du.Username,
		Password:   hash,
		FirstName:  du.FirstName,
		LastName:   du.LastName,
		Avatar:     fmt.Sprintf("https://i.pravatar.cc/150?u=%s", du.Username),
		Role:       du.Role,
		Language:   lang,
		IsVerified: true,
	}
	if err := s.users.Create(ctx, u, profile); err != nil {
		return nil, false, fmt.Errorf("create demo user %s: %w", du.Username, err)
	}
	return u, true, nil
}

func (s *Seeder) categoryIDs(ctx context.Context, slugs []string) ([]uint, error) {
	ids := make([]uint, 0, len(slugs))
	for _, slug := range slugs {
		c, err := s.categories.GetBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("demo category %s: %w", slug, err)
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// seedReviews writes reviews of sellers created in this run and refreshes
// their rating aggregates.
func (s *Seeder) seedReviews(ctx context.Context, demo []DemoReview, accounts map[string]*models.User,
	profiles map[string]*models.SellerProfile, fresh map[string]bool, report *Report) error {
	var reviews []*models.Review
	touched := make([]uint, 0, len(profiles))
	seen := make(map[uint]bool, len(profiles))
	for _, dr := range demo {
		if !fresh[dr.Seller] {
			continue
		}
		author, ok := accounts[dr.Author]
		if !ok {
			return fmt.Errorf("demo review author %s is not a demo account", dr.Author)
		}
		profile := profiles[dr.Seller]
		reviews = append(reviews, &models.Review{
			SellerID: profile.ID,
			AuthorID: author.ID,
			Rating:   dr.Rating,
			Comment:  dr.Comment,
		})
		if !seen[profile.ID] {
			seen[profile.ID] = true
			touched = append(touched, profile.ID)
		}
	}
	if len(reviews) == 0 {
		return nil
	}
	if err := s.reviews.Create(ctx, reviews...); err != nil {
		return err
	}
	report.Reviews = len(reviews)
	return s.reviews.RecomputeSellerAggregates(ctx, touched...)
}

func (s *Seeder) seedExtraSellers(ctx context.Context, hash string) (int, error) {
	t, err := LoadTaxonomy()
	if err != nil {
		return 0, err
	}
	all, err := s.categoryIDs(ctx, slugs(t.Categories))
	if err != nil {
		return 0, err
	}

	f := NewFactory(s.db, s.opts, hash)
	created := 0
	for i := 0; i < s.opts.ExtraSellers; i++ {
		first := all[i%len(all)]
		second := all[(i*3+1)%len(all)]
		if _, err := f.CreateSeller(ctx, []uint{first, second}); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				slog.WarnContext(ctx, "skipping duplicate fake seller", slog.String("error", err.Error()))
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func slugs(entries []CategoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Slug)
	}
	return out
}

func clearData(ctx context.Context, db *gorm.DB) error {
	slog.WarnContext(ctx, "clearing existing marketplace data")
	if db.Dialector.Name() == "postgres" {
		sql := "TRUNCATE TABLE "
		for i, t := range seededTables {
			if i > 0 {
				sql += ", "
			}
			sql += t
		}
		return db.WithContext(ctx).Exec(sql + " RESTART IDENTITY CASCADE").Error
	}
	for _, t := range seededTables {
		if err := db.WithContext(ctx).Exec("DELETE FROM " + t).Error; err != nil {
			return err
		}
	}
	return nil
}

// resetSequences moves serial sequences past explicitly inserted ids.
// This is PostgreSQL-specific.
func resetSequences(ctx context.Context, db *gorm.DB, tables ...string) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, table := range tables {
		err := db.WithContext(ctx).Exec(fmt.Sprintf(`
			SELECT setval(
				pg_get_serial_sequence('%[1]s', 'id'),
				GREATEST((SELECT COALESCE(MAX(id), 1) FROM %[1]s), 1),
				true
			)`, table)).Error
		if err != nil {
			return fmt.Errorf("failed to reset %s sequence: %w", table, err)
		}
	}
	return nil
}
