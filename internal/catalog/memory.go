package catalog

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store over a fixed record set. It evaluates
// queries with the same semantics as the SQL store and backs unit tests and
// local fixtures.
type MemoryStore struct {
	mu        sync.RWMutex
	records   []SellerRecord
	favorites map[favoriteKey]struct{}
}

type favoriteKey struct {
	userID   uint
	sellerID uint
}

// NewMemoryStore copies records into a new store.
func NewMemoryStore(records ...SellerRecord) *MemoryStore {
	s := &MemoryStore{favorites: make(map[favoriteKey]struct{})}
	s.records = append(s.records, records...)
	return s
}

// Favorite marks sellerID as favorited by userID.
func (s *MemoryStore) Favorite(userID, sellerID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites[favoriteKey{userID, sellerID}] = struct{}{}
}

// Search implements Store.
func (s *MemoryStore) Search(ctx context.Context, q Query) ([]SellerRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []SellerRecord
	for _, r := range s.records {
		if s.match(q.Where, r) {
			if q.Viewer != nil {
				_, r.IsFavorited = s.favorites[favoriteKey{*q.Viewer, r.ID}]
			} else {
				r.IsFavorited = false
			}
			matched = append(matched, r)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return Less(q.OrderBy, matched[i], matched[j])
	})

	total := int64(len(matched))
	start := q.Window.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if q.Window.Limit > 0 && start+q.Window.Limit < end {
		end = start + q.Window.Limit
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) match(p Predicate, r SellerRecord) bool {
	switch p := p.(type) {
	case And:
		for _, child := range p {
			if !s.match(child, r) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range p {
			if s.match(child, r) {
				return true
			}
		}
		return false
	case Eq:
		return textValue(r, p.Field) == p.Value
	case Contains:
		return strings.Contains(strings.ToLower(textValue(r, p.Field)), strings.ToLower(p.Needle))
	case Range:
		v, ok := numericValue(r, p.Field)
		if !ok {
			return false
		}
		if p.Min != nil && v < *p.Min {
			return false
		}
		if p.Max != nil && v > *p.Max {
			return false
		}
		return true
	case HasCategory:
		for _, link := range r.Categories {
			for _, id := range p.IDs {
				if link.CategoryID == id {
					return true
				}
			}
			for _, slug := range p.Slugs {
				if link.Category.Slug == slug {
					return true
				}
			}
		}
		return false
	case LanguagesOverlap:
		for _, have := range r.Languages {
			for _, want := range p.Languages {
				if have == want {
					return true
				}
			}
		}
		return false
	case FavoritedBy:
		_, ok := s.favorites[favoriteKey{p.UserID, r.ID}]
		return ok
	default:
		return false
	}
}

// Less orders a before b under keys, with missing hourly rates last and the
// seller id as the final tie-break.
func Less(keys []SortKey, a, b SellerRecord) bool {
	for _, k := range keys {
		if k.Field == FieldCreatedAt {
			if a.CreatedAt.Equal(b.CreatedAt) {
				continue
			}
			if k.Desc {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}

		av, aok := numericValue(a, k.Field)
		bv, bok := numericValue(b, k.Field)
		switch {
		case !aok && !bok:
			continue
		case !aok:
			return false
		case !bok:
			return true
		case av == bv:
			continue
		case k.Desc:
			return av > bv
		default:
			return av < bv
		}
	}
	return a.ID < b.ID
}

func textValue(r SellerRecord, f Field) string {
	switch f {
	case FieldTitle:
		return r.Title
	case FieldDescription:
		return r.Description
	case FieldBio:
		return r.Bio
	case FieldUsername:
		return r.Username
	case FieldFirstName:
		return r.FirstName
	case FieldLastName:
		return r.LastName
	case FieldStatus:
		return string(r.Status)
	case FieldID:
		return strconv.FormatUint(uint64(r.ID), 10)
	}
	return ""
}

func numericValue(r SellerRecord, f Field) (float64, bool) {
	switch f {
	case FieldRating:
		return r.Rating, true
	case FieldReviewCount:
		return float64(r.ReviewCount), true
	case FieldHourlyRate:
		if r.HourlyRate == nil {
			return 0, false
		}
		return *r.HourlyRate, true
	case FieldID:
		return float64(r.ID), true
	}
	return 0, false
}
