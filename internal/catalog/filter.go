// Package catalog turns public seller-search parameters into a store-agnostic
// query value and projects the matching records into response views.
package catalog

import (
	"math"
	"strconv"
	"strings"

	"xhubsell/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100

	// MaxPage keeps (page-1)*limit inside int32 range.
	MaxPage = math.MaxInt32 / MaxLimit

	// StatusAll disables the default ACTIVE-only status filter.
	StatusAll = "all"
)

// SortOrder names a supported result ordering.
type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortRating     SortOrder = "rating"
	SortNewest     SortOrder = "newest"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
)

// ParseSortOrder maps s to a known order; unknown values fall back to popularity.
func ParseSortOrder(s string) SortOrder {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortRating, SortNewest, SortPriceAsc, SortPriceDesc, SortPopularity:
		return o
	}
	return SortPopularity
}

// RawParams holds the query-string values exactly as the client sent them.
type RawParams struct {
	Query         string
	Status        string
	Category      string
	MinRating     string
	MaxRating     string
	MinPrice      string
	MaxPrice      string
	Languages     string
	Sort          string
	Page          string
	Limit         string
	FavoritesOnly string
}

// Filter is the normalized search criteria. Nil bounds are open.
type Filter struct {
	Search string
	// Status is nil when the caller did not choose one, which means ACTIVE only.
	Status        *models.SellerStatus
	AllStatuses   bool
	Categories    []string
	MinRating     *float64
	MaxRating     *float64
	MinPrice      *float64
	MaxPrice      *float64
	Languages     []string
	Sort          SortOrder
	Page          int
	Limit         int
	FavoritesOnly bool
}

// Offset returns the number of rows skipped before the current page.
func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ParseFilter validates and normalizes raw parameters. The only rejected
// input is an unknown status; every other malformed value degrades to its
// default so that coercion failures never reach the store.
func ParseFilter(p RawParams) (Filter, error) {
	f := Filter{
		Search:        strings.TrimSpace(p.Query),
		Categories:    splitList(p.Category, false),
		MinRating:     parseBound(p.MinRating),
		MaxRating:     parseBound(p.MaxRating),
		MinPrice:      parseBound(p.MinPrice),
		MaxPrice:      parseBound(p.MaxPrice),
		Languages:     splitList(p.Languages, true),
		Sort:          ParseSortOrder(p.Sort),
		FavoritesOnly: p.FavoritesOnly == "true",
	}
	f.Page, f.Limit = NormalizeWindow(parsePositive(p.Page, DefaultPage), parsePositive(p.Limit, DefaultLimit))

	status := strings.TrimSpace(p.Status)
	switch {
	case status == "":
	case strings.EqualFold(status, StatusAll):
		f.AllStatuses = true
	default:
		st, ok := models.ParseSellerStatus(status)
		if !ok {
			return Filter{}, models.NewValidationReason("invalid_status",
				"status must be one of ACTIVE, INACTIVE, SUSPENDED, PENDING_VERIFICATION or all")
		}
		f.Status = &st
	}

	return f, nil
}

// NormalizeWindow replaces non-positive page and limit with their defaults and
// caps them at MaxPage and MaxLimit.
func NormalizeWindow(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func splitList(raw string, upper bool) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if upper {
			part = strings.ToUpper(part)
		}
		out = append(out, part)
	}
	return out
}

func parseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parsePositive(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
