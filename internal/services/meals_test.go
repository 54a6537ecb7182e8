package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/services"
)

func TestCreateMealWithServices_SeedsHeadcounts(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")

	meal, err := f.meals.CreateMealWithServices(context.Background(), event.Slug, auth, services.RequestMeta{}, services.MealInput{
		Date:     "2025-12-24",
		Title:    "Dîner",
		Adults:   6,
		Children: 2,
	}, []string{"Apéritif", "Plat", "Dessert"})
	if err != nil {
		t.Fatalf("creating meal with services: %v", err)
	}

	if len(meal.Services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(meal.Services))
	}
	for _, service := range meal.Services {
		if service.Adults != 6 || service.Children != 2 {
			t.Errorf("service %q headcounts = %d/%d, want 6/2", service.Title, service.Adults, service.Children)
		}
	}
	if meal.Services[0].Title != "Apéritif" || meal.Services[0].OrderIndex != 0 {
		t.Errorf("first service = %q at %d, want Apéritif at 0", meal.Services[0].Title, meal.Services[0].OrderIndex)
	}
}

func TestUpdateMeal_DoesNotCascadeHeadcountsToServices(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")

	meal, err := f.meals.CreateMealWithServices(context.Background(), event.Slug, auth, services.RequestMeta{}, services.MealInput{
		Date:   "2025-12-24",
		Adults: 4,
	}, []string{"Plat"})
	if err != nil {
		t.Fatalf("creating meal: %v", err)
	}

	if _, err := f.meals.UpdateMeal(context.Background(), event.Slug, auth, services.RequestMeta{}, meal.ID, services.MealInput{
		Date:   "2025-12-24",
		Adults: 10,
	}); err != nil {
		t.Fatalf("updating meal: %v", err)
	}

	child, err := f.serviceRepo.FindByID(context.Background(), meal.Services[0].ID)
	if err != nil {
		t.Fatalf("reloading service: %v", err)
	}
	if child.Adults != 4 {
		t.Errorf("service adults = %d after meal edit, want 4", child.Adults)
	}
}

func TestCreateMeal_RequiresAdminKey(t *testing.T) {
	f := newFixture(t)
	event, _ := f.createEvent(t, "Réveillon")

	_, err := f.meals.CreateMeal(context.Background(), event.Slug, services.Authorization{Key: "wrong"}, services.RequestMeta{}, services.MealInput{Date: "2025-12-24"})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestDeleteMeal_RejectsOtherEventsMeal(t *testing.T) {
	f := newFixture(t)
	first, firstAuth := f.createEvent(t, "Réveillon")
	second, secondAuth := f.createEvent(t, "Pâques")

	meal := f.createMeal(t, first, firstAuth, "2025-12-24")

	err := f.meals.DeleteMeal(context.Background(), second.Slug, secondAuth, services.RequestMeta{}, meal.ID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateService_RejectsOtherEventsService(t *testing.T) {
	f := newFixture(t)
	first, firstAuth := f.createEvent(t, "Réveillon")
	second, secondAuth := f.createEvent(t, "Pâques")
	ctx := context.Background()
	meta := services.RequestMeta{}

	meal := f.createMeal(t, first, firstAuth, "2025-12-24")
	child := f.createService(t, first, firstAuth, meal.ID, "Plat")

	_, err := f.meals.UpdateService(ctx, second.Slug, secondAuth, meta, child.ID, services.ServiceInput{Title: "Hijacked"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := f.meals.DeleteService(ctx, second.Slug, secondAuth, meta, child.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}

	// The first event's key still works.
	updated, err := f.meals.UpdateService(ctx, first.Slug, firstAuth, meta, child.ID, services.ServiceInput{Title: "Entrée"})
	if err != nil {
		t.Fatalf("updating own service: %v", err)
	}
	if updated.Title != "Entrée" {
		t.Errorf("title = %q, want Entrée", updated.Title)
	}
}

func TestCreateService_SeedsFromMealWhenUnspecified(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	meal := f.createMeal(t, event, auth, "2025-12-24")

	created, err := f.meals.CreateService(context.Background(), event.Slug, auth, services.RequestMeta{}, meal.ID, services.ServiceInput{Title: "Plat"})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	if created.Adults != meal.Adults || created.Children != meal.Children {
		t.Errorf("service headcounts = %d/%d, want seeded %d/%d", created.Adults, created.Children, meal.Adults, meal.Children)
	}
}
