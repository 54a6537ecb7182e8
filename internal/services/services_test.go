package services_test

import (
	"context"
	"testing"

	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/services"
	"github.com/yogz/colist/internal/testutil"
)

// stubGenerator returns canned results and records calls.
type stubGenerator struct {
	ingredients     []llm.GeneratedIngredient
	categories      map[string]string
	lastPeopleCount int
	generateCalls   int
}

func (s *stubGenerator) GenerateIngredients(_ context.Context, _, _ string, peopleCount int) ([]llm.GeneratedIngredient, error) {
	s.generateCalls++
	s.lastPeopleCount = peopleCount
	return s.ingredients, nil
}

func (s *stubGenerator) Categorize(_ context.Context, itemNames []string) (map[string]string, error) {
	result := make(map[string]string, len(itemNames))
	for _, name := range itemNames {
		if category, ok := s.categories[name]; ok {
			result[name] = category
		}
	}
	return result, nil
}

type fixture struct {
	events      *services.EventService
	meals       *services.MealService
	items       *services.ItemService
	people      *services.PersonService
	ingredients *services.IngredientService
	access      *services.AccessService

	eventRepo      repository.EventRepository
	mealRepo       repository.MealRepository
	serviceRepo    repository.ServiceRepository
	itemRepo       repository.ItemRepository
	ingredientRepo repository.IngredientRepository
	personRepo     repository.PersonRepository

	generator *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDatabase(t)

	eventRepo := repository.NewEventRepository(db)
	mealRepo := repository.NewMealRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	itemRepo := repository.NewItemRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	personRepo := repository.NewPersonRepository(db)
	tokenRepo := repository.NewGuestTokenRepository(db)
	changeLogRepo := repository.NewChangeLogRepository(db)
	feedbackRepo := repository.NewAIFeedbackRepository(db)
	planRepo := repository.NewPlanRepository(db)

	access := services.NewAccessService(tokenRepo, personRepo)
	auditor := services.NewAuditor(changeLogRepo)
	generator := &stubGenerator{}

	return &fixture{
		events:         services.NewEventService(eventRepo, planRepo, access, auditor),
		meals:          services.NewMealService(eventRepo, mealRepo, serviceRepo, access, auditor),
		items:          services.NewItemService(eventRepo, serviceRepo, mealRepo, itemRepo, ingredientRepo, access, auditor),
		people:         services.NewPersonService(eventRepo, personRepo, tokenRepo, access, auditor),
		ingredients:    services.NewIngredientService(eventRepo, mealRepo, serviceRepo, itemRepo, ingredientRepo, personRepo, feedbackRepo, generator, access, auditor),
		access:         access,
		eventRepo:      eventRepo,
		mealRepo:       mealRepo,
		serviceRepo:    serviceRepo,
		itemRepo:       itemRepo,
		ingredientRepo: ingredientRepo,
		personRepo:     personRepo,
		generator:      generator,
	}
}

func (f *fixture) createEvent(t *testing.T, name string) (models.Event, services.Authorization) {
	t.Helper()

	event, err := f.events.CreateEvent(context.Background(), services.RequestMeta{}, services.CreateEventInput{Name: name})
	if err != nil {
		t.Fatalf("creating event: %v", err)
	}
	return event, services.Authorization{Key: event.AdminKey}
}

func (f *fixture) createMeal(t *testing.T, event models.Event, auth services.Authorization, date string) models.Meal {
	t.Helper()

	meal, err := f.meals.CreateMeal(context.Background(), event.Slug, auth, services.RequestMeta{}, services.MealInput{
		Date:     date,
		Title:    "Dîner",
		Adults:   2,
		Children: 1,
	})
	if err != nil {
		t.Fatalf("creating meal: %v", err)
	}
	return meal
}

func (f *fixture) createService(t *testing.T, event models.Event, auth services.Authorization, mealID, title string) models.Service {
	t.Helper()

	created, err := f.meals.CreateService(context.Background(), event.Slug, auth, services.RequestMeta{}, mealID, services.ServiceInput{Title: title})
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	return created
}

func (f *fixture) createItem(t *testing.T, event models.Event, auth services.Authorization, serviceID, name string) models.Item {
	t.Helper()

	item, err := f.items.CreateItem(context.Background(), event.Slug, auth, services.RequestMeta{}, serviceID, services.ItemInput{Name: name})
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	return item
}
