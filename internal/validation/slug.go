package validation

import (
	"regexp"
	"strings"

	"xhubsell/internal/models"
)

var categorySlugRegex = regexp.MustCompile(`^[a-z0-9-]{2,48}$`)

// Slugs that would collide with routes mounted next to /categories.
var reservedCategorySlugs = map[string]struct{}{
	"admin":     {},
	"api":       {},
	"auth":      {},
	"public":    {},
	"search":    {},
	"sellers":   {},
	"favorites": {},
	"metrics":   {},
	"health":    {},
	"all":       {},
}

// ValidateCategorySlug validates category slug format and reserved names.
func ValidateCategorySlug(slug string) error {
	if !categorySlugRegex.MatchString(slug) {
		return models.NewValidationReason("slug_invalid",
			"slug must be 2-48 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") || strings.Contains(slug, "--") {
		return models.NewValidationReason("slug_invalid", "slug cannot start or end with a hyphen or repeat hyphens")
	}

	if _, exists := reservedCategorySlugs[slug]; exists {
		return models.NewValidationReason("slug_reserved", "slug is reserved")
	}

	return nil
}
