package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/sanitize"
)

// notePeopleRe matches "Pour 8 personnes" or "pour 1 personne" in an
// item note.
var notePeopleRe = regexp.MustCompile(`(?i)pour\s+(\d+)\s+personnes?`)

const minimumHeadcount = 4

type IngredientService struct {
	eventRepo      repository.EventRepository
	mealRepo       repository.MealRepository
	serviceRepo    repository.ServiceRepository
	itemRepo       repository.ItemRepository
	ingredientRepo repository.IngredientRepository
	personRepo     repository.PersonRepository
	feedbackRepo   repository.AIFeedbackRepository
	generator      llm.Generator
	access         *AccessService
	auditor        *Auditor
}

func NewIngredientService(
	eventRepo repository.EventRepository,
	mealRepo repository.MealRepository,
	serviceRepo repository.ServiceRepository,
	itemRepo repository.ItemRepository,
	ingredientRepo repository.IngredientRepository,
	personRepo repository.PersonRepository,
	feedbackRepo repository.AIFeedbackRepository,
	generator llm.Generator,
	access *AccessService,
	auditor *Auditor,
) *IngredientService {
	return &IngredientService{
		eventRepo:      eventRepo,
		mealRepo:       mealRepo,
		serviceRepo:    serviceRepo,
		itemRepo:       itemRepo,
		ingredientRepo: ingredientRepo,
		personRepo:     personRepo,
		feedbackRepo:   feedbackRepo,
		generator:      generator,
		access:         access,
		auditor:        auditor,
	}
}

// ParseNoteHeadcount extracts a headcount from a free-text note like
// "Pour 8 personnes". Returns 0 when the note carries none.
func ParseNoteHeadcount(note string) int {
	match := notePeopleRe.FindStringSubmatch(note)
	if match == nil {
		return 0
	}
	count, err := strconv.Atoi(match[1])
	if err != nil || count <= 0 {
		return 0
	}
	return count
}

// ConfirmedHeadcount sums effective adults and guest children over
// confirmed people.
func ConfirmedHeadcount(people []models.Person) int {
	total := 0
	for _, person := range people {
		if person.Confirmed() {
			total += person.EffectiveAdults() + person.GuestChildren
		}
	}
	return total
}

// EffectiveHeadcount resolves the count used for ingredient generation.
// Priority: explicit manual override, then a "Pour N personnes" note,
// then max(service headcount, confirmed RSVPs) with a floor of 4.
func EffectiveHeadcount(override int, note string, service models.Service, people []models.Person) int {
	if override > 0 {
		return override
	}
	if fromNote := ParseNoteHeadcount(note); fromNote > 0 {
		return fromNote
	}

	serviceHeadcount := service.Adults + service.Children
	if service.PeopleCount > 0 {
		serviceHeadcount = service.PeopleCount
	}
	count := serviceHeadcount
	if confirmed := ConfirmedHeadcount(people); confirmed > count {
		count = confirmed
	}
	if count < minimumHeadcount {
		return minimumHeadcount
	}
	return count
}

type GenerateInput struct {
	ItemID      string
	PeopleCount int // manual override, 0 means none
}

// Generate builds a fresh ingredient list for one item and replaces the
// item's existing ingredients with it.
func (service *IngredientService) Generate(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input GenerateInput) ([]models.Ingredient, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return nil, err
	}

	item, err := service.itemRepo.FindByID(ctx, input.ItemID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	parent, err := service.serviceRepo.FindByID(ctx, item.ServiceID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	meal, err := service.mealRepo.FindByID(ctx, parent.MealID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return nil, fmt.Errorf("item belongs to another event: %w", apperrors.ErrNotFound)
	}

	people, err := service.personRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	count := EffectiveHeadcount(input.PeopleCount, item.Note, parent, people)
	generated, err := service.generator.GenerateIngredients(ctx, item.Name, item.Note, count)
	if err != nil {
		return nil, fmt.Errorf("ingredient generation: %w", err)
	}

	ingredients := make([]models.Ingredient, 0, len(generated))
	for index, gen := range generated {
		name := sanitize.Text(gen.Name)
		if name == "" {
			continue
		}
		ingredient := models.Ingredient{
			ItemID:     item.ID,
			Name:       name,
			OrderIndex: index,
		}
		if quantity := sanitize.Text(gen.Quantity); quantity != "" {
			ingredient.Quantity = &quantity
		}
		ingredients = append(ingredients, ingredient)
	}

	replaced, err := service.ingredientRepo.ReplaceForItem(ctx, item.ID, ingredients)
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "ingredients", item.ID, nil, replaced)
	return replaced, nil
}

// GenerateAllInput partitions ingredient-less items into two buckets:
// full generation for GenerateIDs, category-only for the rest.
type GenerateAllInput struct {
	GenerateIDs []string
}

type GenerateAllResult struct {
	Generated   int `json:"generated"`
	Categorized int `json:"categorized"`
	Failed      int `json:"failed"`
}

// GenerateAll walks every ingredient-less item in the event: selected
// items get a full ingredient list, the others only a shopping
// category. Items that fail are counted and skipped, not fatal.
func (service *IngredientService) GenerateAll(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input GenerateAllInput) (GenerateAllResult, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return GenerateAllResult{}, apperrors.Classify(err)
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return GenerateAllResult{}, err
	}

	selected := make(map[string]bool, len(input.GenerateIDs))
	for _, id := range input.GenerateIDs {
		selected[id] = true
	}

	meals, err := service.mealRepo.FindByEventID(ctx, event.ID)
	if err != nil {
		return GenerateAllResult{}, apperrors.Classify(err)
	}

	var result GenerateAllResult
	var toCategorize []models.Item
	for _, meal := range meals {
		children, err := service.serviceRepo.FindByMealID(ctx, meal.ID)
		if err != nil {
			return result, apperrors.Classify(err)
		}
		for _, child := range children {
			items, err := service.itemRepo.FindByServiceID(ctx, child.ID)
			if err != nil {
				return result, apperrors.Classify(err)
			}
			for _, item := range items {
				existing, err := service.ingredientRepo.FindByItemID(ctx, item.ID)
				if err != nil {
					return result, apperrors.Classify(err)
				}
				if len(existing) > 0 {
					continue
				}
				if !selected[item.ID] {
					toCategorize = append(toCategorize, item)
					continue
				}
				if _, err := service.Generate(ctx, slug, auth, meta, GenerateInput{ItemID: item.ID}); err != nil {
					slog.Warn("bulk ingredient generation failed", "item_id", item.ID, "error", err)
					result.Failed++
					continue
				}
				result.Generated++
			}
		}
	}

	if len(toCategorize) > 0 {
		names := make([]string, len(toCategorize))
		for index, item := range toCategorize {
			names[index] = item.Name
		}
		categories, err := service.generator.Categorize(ctx, names)
		if err != nil {
			slog.Warn("bulk categorization failed", "error", err)
			result.Failed += len(toCategorize)
		} else {
			for _, item := range toCategorize {
				category, ok := categories[item.Name]
				if !ok || !models.ValidCategory(category) {
					continue
				}
				if err := service.itemRepo.SetCategory(ctx, item.ID, &category); err != nil {
					result.Failed++
					continue
				}
				result.Categorized++
			}
		}
	}

	return result, nil
}

type FeedbackInput struct {
	ItemName string
	Feedback string
	Comment  string
}

// SaveFeedback records a thumbs up/down on a generated list.
func (service *IngredientService) SaveFeedback(ctx context.Context, slug string, auth Authorization, input FeedbackInput) (models.AIFeedback, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.AIFeedback{}, apperrors.Classify(err)
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.AIFeedback{}, err
	}

	feedback := sanitize.Text(input.Feedback)
	if feedback != "up" && feedback != "down" {
		return models.AIFeedback{}, fmt.Errorf("feedback must be up or down: %w", apperrors.ErrValidation)
	}

	saved, err := service.feedbackRepo.Create(ctx, models.AIFeedback{
		EventID:  event.ID,
		ItemName: sanitize.Text(input.ItemName),
		Feedback: feedback,
		Comment:  sanitize.Text(input.Comment),
	})
	if err != nil {
		return models.AIFeedback{}, apperrors.Classify(err)
	}
	return saved, nil
}
