package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
	slugTrim     = regexp.MustCompile(`^-+|-+$`)
)

// Slugify converts free text to a URL-friendly slug.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return slugTrim.ReplaceAllString(s, "")
}

// VariantSlug builds the base slug for a variant from its name and optional
// color/size attributes.
func VariantSlug(variantName, color, size string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{variantName, color, size} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return Slugify(strings.Join(parts, " "))
}

// UniqueVariantSlug appends -1, -2, ... to base until no other variant
// claims the slug. excludeVariantID skips the variant being edited.
func (r *Repo) UniqueVariantSlug(ctx context.Context, base, excludeVariantID string) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		taken, err := r.slugExists(ctx, slug, excludeVariantID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (r *Repo) slugExists(ctx context.Context, slug, excludeVariantID string) (bool, error) {
	var n int
	var err error
	if excludeVariantID != "" {
		err = r.DB.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM variants WHERE slug = $1 AND id <> $2
		`, slug, excludeVariantID)
	} else {
		err = r.DB.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM variants WHERE slug = $1
		`, slug)
	}
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}
