package seed

import (
	"embed"
	"fmt"

	"xhubsell/internal/models"
	"xhubsell/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Taxonomy is the built-in content shipped with every deployment.
type Taxonomy struct {
	Categories    []CategoryEntry     `yaml:"categories"`
	Banners       []BannerEntry       `yaml:"banners"`
	Announcements []AnnouncementEntry `yaml:"announcements"`
}

// CategoryEntry is a taxonomy category keyed by slug.
type CategoryEntry struct {
	Slug        string `yaml:"slug"`
	NameEn      string `yaml:"nameEn"`
	NameRu      string `yaml:"nameRu"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
}

// BannerEntry is a built-in banner keyed by id.
type BannerEntry struct {
	ID          uint                  `yaml:"id"`
	Title       string                `yaml:"title"`
	Description string                `yaml:"description"`
	ImageURL    string                `yaml:"imageUrl"`
	Link        string                `yaml:"link"`
	Position    models.BannerPosition `yaml:"position"`
	IsActive    bool                  `yaml:"isActive"`
	IsExternal  bool                  `yaml:"isExternal"`
}

// AnnouncementEntry is a built-in announcement keyed by id.
type AnnouncementEntry struct {
	ID       uint                        `yaml:"id"`
	Text     string                      `yaml:"text"`
	Link     string                      `yaml:"link"`
	Priority models.AnnouncementPriority `yaml:"priority"`
	IsActive bool                        `yaml:"isActive"`
}

// CategoryModels converts the taxonomy categories.
func (t *Taxonomy) CategoryModels() []models.Category {
	out := make([]models.Category, 0, len(t.Categories))
	for _, c := range t.Categories {
		out = append(out, models.Category{
			Slug: c.Slug, NameEn: c.NameEn, NameRu: c.NameRu, Description: c.Description, Icon: c.Icon,
		})
	}
	return out
}

// BannerModels converts the built-in banners.
func (t *Taxonomy) BannerModels() []models.Banner {
	out := make([]models.Banner, 0, len(t.Banners))
	for _, b := range t.Banners {
		out = append(out, models.Banner{
			ID: b.ID, Title: b.Title, Description: b.Description, ImageURL: b.ImageURL,
			Link: b.Link, Position: b.Position, IsActive: b.IsActive, IsExternal: b.IsExternal,
		})
	}
	return out
}

// AnnouncementModels converts the built-in announcements.
func (t *Taxonomy) AnnouncementModels() []models.Announcement {
	out := make([]models.Announcement, 0, len(t.Announcements))
	for _, a := range t.Announcements {
		out = append(out, models.Announcement{
			ID: a.ID, Text: a.Text, Link: a.Link, Priority: a.Priority, IsActive: a.IsActive,
		})
	}
	return out
}

// DemoUser is a non-seller demo account.
type DemoUser struct {
	Username  string          `yaml:"username"`
	Email     string          `yaml:"email"`
	FirstName string          `yaml:"firstName"`
	LastName  string          `yaml:"lastName"`
	Role      models.Role     `yaml:"role"`
	Language  models.Language `yaml:"language"`
}

// DemoSeller is a demo account with a seller profile.
type DemoSeller struct {
	DemoUser    `yaml:",inline"`
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Bio         string              `yaml:"bio"`
	HourlyRate  *float64            `yaml:"hourlyRate"`
	Experience  *int                `yaml:"experience"`
	Location    string              `yaml:"location"`
	Languages   []string            `yaml:"languages"`
	Skills      []string            `yaml:"skills"`
	Status      models.SellerStatus `yaml:"status"`
	Categories  []string            `yaml:"categories"`
}

// DemoReview is a review between two demo accounts, referenced by username.
type DemoReview struct {
	Seller  string `yaml:"seller"`
	Author  string `yaml:"author"`
	Rating  int    `yaml:"rating"`
	Comment string `yaml:"comment"`
}

// Demo is the demo marketplace used in development.
type Demo struct {
	Users   []DemoUser   `yaml:"users"`
	Sellers []DemoSeller `yaml:"sellers"`
	Reviews []DemoReview `yaml:"reviews"`
}

// LoadTaxonomy parses the embedded taxonomy.
func LoadTaxonomy() (*Taxonomy, error) {
	var t Taxonomy
	if err := decode("data/taxonomy.yaml", &t); err != nil {
		return nil, err
	}
	for _, c := range t.Categories {
		if err := validation.ValidateCategorySlug(c.Slug); err != nil {
			return nil, fmt.Errorf("taxonomy category %q: %w", c.Slug, err)
		}
	}
	return &t, nil
}

// LoadDemo parses the embedded demo data set.
func LoadDemo() (*Demo, error) {
	var d Demo
	if err := decode("data/demo.yaml", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decode(name string, dst any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
