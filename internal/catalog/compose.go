package catalog

import (
	"strconv"

	"xhubsell/internal/models"
)

// DefaultTopSellersLimit is the page size of the top-sellers listing.
const DefaultTopSellersLimit = 8

var searchFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldBio,
	FieldUsername,
	FieldFirstName,
	FieldLastName,
}

// Compose builds the store query for f. viewer is the authenticated user, if
// any; the favorites-only restriction applies only when one is present.
func Compose(f Filter, viewer *uint) Query {
	where := And{}

	switch {
	case f.AllStatuses:
	case f.Status != nil:
		where = append(where, Eq{Field: FieldStatus, Value: string(*f.Status)})
	default:
		where = append(where, Eq{Field: FieldStatus, Value: string(models.SellerStatusActive)})
	}

	if f.Search != "" {
		or := make(Or, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, Contains{Field: field, Needle: f.Search})
		}
		where = append(where, or)
	}

	if len(f.Categories) > 0 {
		where = append(where, categoryPredicate(f.Categories))
	}

	if f.MinRating != nil || f.MaxRating != nil {
		where = append(where, Range{Field: FieldRating, Min: f.MinRating, Max: f.MaxRating})
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		where = append(where, Range{Field: FieldHourlyRate, Min: f.MinPrice, Max: f.MaxPrice})
	}

	if len(f.Languages) > 0 {
		where = append(where, LanguagesOverlap{Languages: f.Languages})
	}

	if f.FavoritesOnly && viewer != nil {
		where = append(where, FavoritedBy{UserID: *viewer})
	}

	return Query{
		Where:   where,
		OrderBy: SortKeys(f.Sort),
		Window:  Window{Offset: f.Offset(), Limit: f.Limit},
		Viewer:  viewer,
	}
}

// SortKeys returns the ordering for s. Stores append an id tie-break so that
// pages never overlap.
func SortKeys(s SortOrder) []SortKey {
	switch s {
	case SortRating:
		return []SortKey{{Field: FieldRating, Desc: true}, {Field: FieldReviewCount, Desc: true}}
	case SortNewest:
		return []SortKey{{Field: FieldCreatedAt, Desc: true}}
	case SortPriceAsc:
		return []SortKey{{Field: FieldHourlyRate}}
	case SortPriceDesc:
		return []SortKey{{Field: FieldHourlyRate, Desc: true}}
	default:
		return []SortKey{{Field: FieldReviewCount, Desc: true}, {Field: FieldRating, Desc: true}}
	}
}

// TopSellers builds the query behind the top-sellers listing: active sellers
// ordered by rating, then review count.
func TopSellers(limit, offset int, viewer *uint) Query {
	if limit <= 0 {
		limit = DefaultTopSellersLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Query{
		Where:   And{Eq{Field: FieldStatus, Value: string(models.SellerStatusActive)}},
		OrderBy: SortKeys(SortRating),
		Window:  Window{Offset: offset, Limit: limit},
		Viewer:  viewer,
	}
}

func categoryPredicate(values []string) HasCategory {
	var p HasCategory
	for _, v := range values {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			p.IDs = append(p.IDs, uint(id))
			continue
		}
		p.Slugs = append(p.Slugs, v)
	}
	return p
}
