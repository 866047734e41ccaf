package events

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

const slugMaxAttempts = 50

// Slugify normalizes a name into a URL slug: lower-case, runs of
// non-alphanumerics collapsed to single dashes, dashes trimmed at both ends.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// slugChecker reports whether a slug is already in use.
type slugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// UniqueSlug derives a slug from name and appends -2, -3, ... until it is
// free. Soft-deleted events keep their slugs, so those count as taken.
func UniqueSlug(ctx context.Context, store slugChecker, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "event"
	}
	candidate := base
	for i := 2; i <= slugMaxAttempts; i++ {
		taken, err := store.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, slugMaxAttempts)
}
