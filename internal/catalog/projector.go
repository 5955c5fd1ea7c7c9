package catalog

import (
	"sort"
	"time"

	"xhubsell/internal/models"
)

// CategoryView is the public shape of a category attached to a seller.
type CategoryView struct {
	ID     uint   `json:"id"`
	NameEn string `json:"nameEn"`
	NameRu string `json:"nameRu"`
	Slug   string `json:"slug"`
	Icon   string `json:"icon,omitempty"`
}

// SellerView is the flat public shape of a seller in listings.
type SellerView struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"userId"`
	Username        string              `json:"username"`
	FirstName       string              `json:"firstName"`
	LastName        string              `json:"lastName"`
	Avatar          string              `json:"avatar,omitempty"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Bio             string              `json:"bio"`
	HourlyRate      *float64            `json:"hourlyRate"`
	Experience      *int                `json:"experience"`
	Location        string              `json:"location"`
	Languages       []string            `json:"languages"`
	Skills          []string            `json:"skills"`
	Status          models.SellerStatus `json:"status"`
	Rating          float64             `json:"rating"`
	ReviewCount     int                 `json:"reviewCount"`
	TotalReviews    int64               `json:"totalReviews"`
	PrimaryCategory *CategoryView       `json:"primaryCategory"`
	Categories      []CategoryView      `json:"categories"`
	IsFavorited     bool                `json:"isFavorited"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// Project maps records to views. It performs no I/O.
func Project(records []SellerRecord) []SellerView {
	out := make([]SellerView, 0, len(records))
	for i := range records {
		out = append(out, ProjectOne(records[i]))
	}
	return out
}

// ProjectOne maps a single record. The primary category is the earliest
// linked one by link id; nil when the seller has no categories.
func ProjectOne(r SellerRecord) SellerView {
	links := make([]models.SellerCategory, len(r.Categories))
	copy(links, r.Categories)
	sort.SliceStable(links, func(i, j int) bool { return links[i].ID < links[j].ID })

	cats := make([]CategoryView, 0, len(links))
	for _, link := range links {
		cats = append(cats, CategoryView{
			ID:     link.Category.ID,
			NameEn: link.Category.NameEn,
			NameRu: link.Category.NameRu,
			Slug:   link.Category.Slug,
			Icon:   link.Category.Icon,
		})
	}

	var primary *CategoryView
	if len(cats) > 0 {
		first := cats[0]
		primary = &first
	}

	return SellerView{
		ID:              r.ID,
		UserID:          r.UserID,
		Username:        r.Username,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Avatar:          r.Avatar,
		Title:           r.Title,
		Description:     r.Description,
		Bio:             r.Bio,
		HourlyRate:      r.HourlyRate,
		Experience:      r.Experience,
		Location:        r.Location,
		Languages:       nonNil(r.Languages),
		Skills:          nonNil(r.Skills),
		Status:          r.Status,
		Rating:          r.Rating,
		ReviewCount:     r.ReviewCount,
		TotalReviews:    r.TotalReviews,
		PrimaryCategory: primary,
		Categories:      cats,
		IsFavorited:     r.IsFavorited,
		CreatedAt:       r.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
