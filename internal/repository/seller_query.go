package repository

import (
	"fmt"
	"strings"

	"xhubsell/internal/catalog"

	"github.com/lib/pq"
)

const (
	sellerTable = "seller_profiles"

	sellerJoinUsers = "JOIN users ON users.id = seller_profiles.user_id AND users.deleted_at IS NULL"

	totalReviewsColumn = "(SELECT COUNT(*) FROM reviews r WHERE r.seller_id = seller_profiles.id) AS total_reviews"
)

var userFields = map[catalog.Field]bool{
	catalog.FieldUsername:  true,
	catalog.FieldFirstName: true,
	catalog.FieldLastName:  true,
}

// column qualifies a catalog field with its table.
func column(f catalog.Field) string {
	if userFields[f] {
		return "users." + string(f)
	}
	return sellerTable + "." + string(f)
}

// likeEscaper escapes LIKE metacharacters so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// renderPredicate turns a predicate tree into a SQL fragment with positional
// arguments. An empty fragment means "no restriction".
func renderPredicate(p catalog.Predicate) (string, []any) {
	switch p := p.(type) {
	case catalog.And:
		return renderJoined(p, " AND ", "")
	case catalog.Or:
		return renderJoined(p, " OR ", "1 = 0")
	case catalog.Eq:
		return column(p.Field) + " = ?", []any{p.Value}
	case catalog.Contains:
		return column(p.Field) + ` ILIKE ? ESCAPE '\'`, []any{"%" + likeEscaper.Replace(p.Needle) + "%"}
	case catalog.Range:
		var parts []string
		var args []any
		if p.Min != nil {
			parts = append(parts, column(p.Field)+" >= ?")
			args = append(args, *p.Min)
		}
		if p.Max != nil {
			parts = append(parts, column(p.Field)+" <= ?")
			args = append(args, *p.Max)
		}
		return strings.Join(parts, " AND "), args
	case catalog.HasCategory:
		var match []string
		var args []any
		if len(p.IDs) > 0 {
			match = append(match, "sc.category_id IN ?")
			args = append(args, p.IDs)
		}
		if len(p.Slugs) > 0 {
			match = append(match, "c.slug IN ?")
			args = append(args, p.Slugs)
		}
		if len(match) == 0 {
			return "", nil
		}
		return "EXISTS (SELECT 1 FROM seller_categories sc JOIN categories c ON c.id = sc.category_id" +
			" WHERE sc.seller_id = seller_profiles.id AND (" + strings.Join(match, " OR ") + "))", args
	case catalog.LanguagesOverlap:
		if len(p.Languages) == 0 {
			return "", nil
		}
		return "seller_profiles.languages && CAST(? AS text[])", []any{pq.StringArray(p.Languages)}
	case catalog.FavoritedBy:
		return "EXISTS (SELECT 1 FROM favorites f WHERE f.seller_id = seller_profiles.id AND f.user_id = ?)", []any{p.UserID}
	default:
		panic(fmt.Sprintf("repository: unsupported predicate %T", p))
	}
}

func renderJoined(children []catalog.Predicate, sep, empty string) (string, []any) {
	var parts []string
	var args []any
	for _, child := range children {
		sql, childArgs := renderPredicate(child)
		if sql == "" {
			continue
		}
		parts = append(parts, "("+sql+")")
		args = append(args, childArgs...)
	}
	if len(parts) == 0 {
		return empty, nil
	}
	return strings.Join(parts, sep), args
}

// renderOrder renders sort keys followed by the id tie-break. Hourly rates
// are nullable and sort last in both directions.
func renderOrder(keys []catalog.SortKey) string {
	terms := make([]string, 0, len(keys)+1)
	hasID := false
	for _, k := range keys {
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		term := column(k.Field) + " " + dir
		if k.Field == catalog.FieldHourlyRate {
			term += " NULLS LAST"
		}
		if k.Field == catalog.FieldID {
			hasID = true
		}
		terms = append(terms, term)
	}
	if !hasID {
		terms = append(terms, "seller_profiles.id ASC")
	}
	return strings.Join(terms, ", ")
}

// selectColumns returns the projection for a seller query and its argument.
func selectColumns(viewer *uint) (string, []any) {
	cols := "seller_profiles.*, users.username, users.first_name, users.last_name, users.avatar, " + totalReviewsColumn
	if viewer == nil {
		return cols + ", FALSE AS is_favorited", nil
	}
	return cols + ", EXISTS (SELECT 1 FROM favorites fv WHERE fv.seller_id = seller_profiles.id AND fv.user_id = ?) AS is_favorited",
		[]any{*viewer}
}
