package events

import (
	"context"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tech Conference 2026", "tech-conference-2026"},
		{"  Startup   Mixer!  ", "startup-mixer"},
		{"Déjà Vu Night", "déjà-vu-night"},
		{"---", ""},
		{"AI/ML & Robotics", "ai-ml-robotics"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type fakeSlugChecker struct {
	taken map[string]bool
}

func (f fakeSlugChecker) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f.taken[slug], nil
}

func TestUniqueSlug(t *testing.T) {
	ctx := context.Background()

	got, err := UniqueSlug(ctx, fakeSlugChecker{}, "Tech Conf")
	if err != nil || got != "tech-conf" {
		t.Fatalf("UniqueSlug = %q, %v; want tech-conf", got, err)
	}

	checker := fakeSlugChecker{taken: map[string]bool{"tech-conf": true, "tech-conf-2": true}}
	got, err = UniqueSlug(ctx, checker, "Tech Conf")
	if err != nil || got != "tech-conf-3" {
		t.Fatalf("UniqueSlug = %q, %v; want tech-conf-3", got, err)
	}

	got, err = UniqueSlug(ctx, fakeSlugChecker{}, "!!!")
	if err != nil || got != "event" {
		t.Fatalf("UniqueSlug fallback = %q, %v; want event", got, err)
	}
}
