package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/services"
)

func TestCreateEvent_MintsSlugAndKey(t *testing.T) {
	f := newFixture(t)

	event, err := f.events.CreateEvent(context.Background(), services.RequestMeta{}, services.CreateEventInput{Name: "Réveillon 2025"})
	if err != nil {
		t.Fatalf("creating event: %v", err)
	}
	if event.Slug == "" || event.AdminKey == "" {
		t.Fatalf("slug %q / admin key %q, want both non-empty", event.Slug, event.AdminKey)
	}
	if !strings.HasPrefix(event.Slug, "reveillon-2025-") {
		t.Errorf("slug = %q, want a reveillon-2025 prefix", event.Slug)
	}
}

func TestCreateEvent_RequiresName(t *testing.T) {
	f := newFixture(t)

	_, err := f.events.CreateEvent(context.Background(), services.RequestMeta{}, services.CreateEventInput{Name: "   "})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFetchPlan_WriteEnabledFollowsKey(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	ctx := context.Background()

	_, writeEnabled, err := f.events.FetchPlan(ctx, event.Slug, auth.Key)
	if err != nil {
		t.Fatalf("fetching plan: %v", err)
	}
	if !writeEnabled {
		t.Error("admin key should enable writes")
	}

	_, writeEnabled, err = f.events.FetchPlan(ctx, event.Slug, "wrong-key")
	if err != nil {
		t.Fatalf("fetching plan read-only: %v", err)
	}
	if writeEnabled {
		t.Error("wrong key must not enable writes")
	}
}

func TestUpdateSettings_LastWriteWins(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	ctx := context.Background()
	meta := services.RequestMeta{}

	four, six := 4, 6
	if _, err := f.events.UpdateSettings(ctx, event.Slug, auth, meta, services.UpdateEventInput{Name: "Réveillon", Adults: &four}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	updated, err := f.events.UpdateSettings(ctx, event.Slug, auth, meta, services.UpdateEventInput{Name: "Réveillon", Adults: &six})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.Adults == nil || *updated.Adults != 6 {
		t.Errorf("adults = %v, want 6", updated.Adults)
	}
}
