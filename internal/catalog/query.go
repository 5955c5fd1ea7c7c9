package catalog

import (
	"context"

	"xhubsell/internal/models"
)

// Field names a filterable or sortable seller attribute. Values match the
// column names used by the SQL store.
type Field string

const (
	FieldID          Field = "id"
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldBio         Field = "bio"
	FieldUsername    Field = "username"
	FieldFirstName   Field = "first_name"
	FieldLastName    Field = "last_name"
	FieldStatus      Field = "status"
	FieldRating      Field = "rating"
	FieldReviewCount Field = "review_count"
	FieldHourlyRate  Field = "hourly_rate"
	FieldCreatedAt   Field = "created_at"
)

// Predicate is a node of the filter tree.
type Predicate interface {
	isPredicate()
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when at least one child matches.
type Or []Predicate

// Eq is an equality test.
type Eq struct {
	Field Field
	Value string
}

// Contains is a case-insensitive substring test.
type Contains struct {
	Field  Field
	Needle string
}

// Range is an inclusive numeric range; nil bounds are open.
type Range struct {
	Field Field
	Min   *float64
	Max   *float64
}

// HasCategory matches sellers linked to at least one listed category,
// given either by numeric id or by slug.
type HasCategory struct {
	IDs   []uint
	Slugs []string
}

// LanguagesOverlap matches sellers sharing at least one language with the list.
type LanguagesOverlap struct {
	Languages []string
}

// FavoritedBy matches sellers the user has favorited.
type FavoritedBy struct {
	UserID uint
}

func (And) isPredicate()              {}
func (Or) isPredicate()               {}
func (Eq) isPredicate()               {}
func (Contains) isPredicate()         {}
func (Range) isPredicate()            {}
func (HasCategory) isPredicate()      {}
func (LanguagesOverlap) isPredicate() {}
func (FavoritedBy) isPredicate()      {}

// SortKey is one ordering term.
type SortKey struct {
	Field Field
	Desc  bool
}

// Window is the offset/limit slice of the ordered result.
type Window struct {
	Offset int
	Limit  int
}

// Query is a complete, store-agnostic seller query.
type Query struct {
	Where   And
	OrderBy []SortKey
	Window  Window
	// Viewer is the requesting user, used only to compute IsFavorited.
	Viewer *uint
}

// SellerRecord is a seller profile joined with its owner's public fields and
// per-request aggregates, as returned by a Store.
type SellerRecord struct {
	models.SellerProfile
	Username     string
	FirstName    string
	LastName     string
	Avatar       string
	TotalReviews int64
	IsFavorited  bool
}

// Store executes queries. Implementations run the windowed fetch and the
// count as two reads using the same predicates.
type Store interface {
	Search(ctx context.Context, q Query) ([]SellerRecord, int64, error)
}
