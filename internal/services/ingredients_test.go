package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/services"
)

func TestEffectiveHeadcount_PriorityChain(t *testing.T) {
	people := []models.Person{
		{Name: "A", Status: statusPtr(models.RSVPStatusConfirmed), GuestAdults: 1},
		{Name: "B", Status: statusPtr(models.RSVPStatusDeclined), GuestAdults: 9},
	}
	service := models.Service{Adults: 4, Children: 2}

	tests := []struct {
		name     string
		override int
		note     string
		service  models.Service
		people   []models.Person
		want     int
	}{
		{"manual override beats note", 10, "Pour 6 personnes", service, people, 10},
		{"note beats smart count", 0, "Pour 6 personnes", service, people, 6},
		{"note is case-insensitive", 0, "POUR 2 PERSONNES", service, people, 2},
		{"singular personne parses", 0, "pour 1 personne", service, people, 1},
		{"service headcount wins over fewer rsvps", 0, "", service, people, 6},
		{"rsvps win over smaller service", 0, "", models.Service{Adults: 1}, []models.Person{
			{Status: statusPtr(models.RSVPStatusConfirmed), GuestAdults: 4, GuestChildren: 2},
		}, 7},
		{"floor of four when everything is zero", 0, "", models.Service{}, nil, 4},
		{"people count field overrides adults+children", 0, "", models.Service{Adults: 2, PeopleCount: 9}, nil, 9},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := services.EffectiveHeadcount(test.override, test.note, test.service, test.people)
			if got != test.want {
				t.Errorf("EffectiveHeadcount = %d, want %d", got, test.want)
			}
		})
	}
}

func TestParseNoteHeadcount_NoMatch(t *testing.T) {
	for _, note := range []string{"", "sans gluten", "pour personnes", "pour -3 personnes"} {
		if got := services.ParseNoteHeadcount(note); got != 0 {
			t.Errorf("ParseNoteHeadcount(%q) = %d, want 0", note, got)
		}
	}
}

func TestGenerate_UsesNoteCountAndReplacesIngredients(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	meal := f.createMeal(t, event, auth, "2025-12-24")
	child := f.createService(t, event, auth, meal.ID, "Plat")
	ctx := context.Background()
	meta := services.RequestMeta{}

	item, err := f.items.CreateItem(ctx, event.Slug, auth, meta, child.ID, services.ItemInput{
		Name: "Lasagnes",
		Note: "Pour 8 personnes",
	})
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}

	// A manual ingredient that generation must wipe.
	if _, err := f.items.AddIngredient(ctx, event.Slug, auth, meta, item.ID, services.IngredientInput{Name: "Sel"}); err != nil {
		t.Fatalf("adding manual ingredient: %v", err)
	}

	f.generator.ingredients = []llm.GeneratedIngredient{
		{Name: "Pâtes à lasagne", Quantity: "1 kg"},
		{Name: "Béchamel", Quantity: "1 L"},
	}

	replaced, err := f.ingredients.Generate(ctx, event.Slug, auth, meta, services.GenerateInput{ItemID: item.ID})
	if err != nil {
		t.Fatalf("generating: %v", err)
	}

	if f.generator.lastPeopleCount != 8 {
		t.Errorf("generation used headcount %d, want 8 from note", f.generator.lastPeopleCount)
	}
	if len(replaced) != 2 {
		t.Fatalf("expected 2 generated ingredients, got %d", len(replaced))
	}
	for _, ingredient := range replaced {
		if ingredient.Name == "Sel" {
			t.Error("manual ingredient survived the replace")
		}
	}

	stored, err := f.ingredientRepo.FindByItemID(ctx, item.ID)
	if err != nil {
		t.Fatalf("reloading ingredients: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored ingredients = %d, want 2", len(stored))
	}
}

func TestGenerate_ManualOverrideBeatsNote(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	meal := f.createMeal(t, event, auth, "2025-12-24")
	child := f.createService(t, event, auth, meal.ID, "Plat")
	ctx := context.Background()

	item, _ := f.items.CreateItem(ctx, event.Slug, auth, services.RequestMeta{}, child.ID, services.ItemInput{
		Name: "Gratin",
		Note: "Pour 6 personnes",
	})
	f.generator.ingredients = []llm.GeneratedIngredient{{Name: "Pommes de terre"}}

	if _, err := f.ingredients.Generate(ctx, event.Slug, auth, services.RequestMeta{}, services.GenerateInput{ItemID: item.ID, PeopleCount: 12}); err != nil {
		t.Fatalf("generating: %v", err)
	}
	if f.generator.lastPeopleCount != 12 {
		t.Errorf("generation used headcount %d, want manual 12", f.generator.lastPeopleCount)
	}
}

func TestGenerateAll_PartitionsGenerateAndCategorize(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")
	meal := f.createMeal(t, event, auth, "2025-12-24")
	child := f.createService(t, event, auth, meal.ID, "Plat")
	ctx := context.Background()
	meta := services.RequestMeta{}

	lasagnes := f.createItem(t, event, auth, child.ID, "Lasagnes")
	vin := f.createItem(t, event, auth, child.ID, "Vin rouge")
	done := f.createItem(t, event, auth, child.ID, "Salade")
	if _, err := f.items.AddIngredient(ctx, event.Slug, auth, meta, done.ID, services.IngredientInput{Name: "Laitue"}); err != nil {
		t.Fatalf("seeding existing ingredients: %v", err)
	}

	f.generator.ingredients = []llm.GeneratedIngredient{{Name: "Pâtes à lasagne"}}
	f.generator.categories = map[string]string{"Vin rouge": "Boissons"}

	result, err := f.ingredients.GenerateAll(ctx, event.Slug, auth, meta, services.GenerateAllInput{GenerateIDs: []string{lasagnes.ID}})
	if err != nil {
		t.Fatalf("bulk generation: %v", err)
	}

	if result.Generated != 1 || result.Categorized != 1 || result.Failed != 0 {
		t.Errorf("result = %+v, want 1 generated, 1 categorized, 0 failed", result)
	}

	// The item that already had ingredients is untouched.
	if f.generator.generateCalls != 1 {
		t.Errorf("generator called %d times, want 1", f.generator.generateCalls)
	}

	categorized, err := f.itemRepo.FindByID(ctx, vin.ID)
	if err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	if categorized.Category == nil || *categorized.Category != "Boissons" {
		t.Errorf("category = %v, want Boissons", categorized.Category)
	}
}

func TestSaveFeedback_RejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	event, auth := f.createEvent(t, "Réveillon")

	_, err := f.ingredients.SaveFeedback(context.Background(), event.Slug, auth, services.FeedbackInput{ItemName: "Lasagnes", Feedback: "meh"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	saved, err := f.ingredients.SaveFeedback(context.Background(), event.Slug, auth, services.FeedbackInput{ItemName: "Lasagnes", Feedback: "up"})
	if err != nil {
		t.Fatalf("saving feedback: %v", err)
	}
	if saved.Feedback != "up" {
		t.Errorf("feedback = %q, want up", saved.Feedback)
	}
}
