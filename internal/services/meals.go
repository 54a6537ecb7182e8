package services

import (
	"context"
	"fmt"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/sanitize"
)

type MealService struct {
	eventRepo   repository.EventRepository
	mealRepo    repository.MealRepository
	serviceRepo repository.ServiceRepository
	access      *AccessService
	auditor     *Auditor
}

func NewMealService(
	eventRepo repository.EventRepository,
	mealRepo repository.MealRepository,
	serviceRepo repository.ServiceRepository,
	access *AccessService,
	auditor *Auditor,
) *MealService {
	return &MealService{
		eventRepo:   eventRepo,
		mealRepo:    mealRepo,
		serviceRepo: serviceRepo,
		access:      access,
		auditor:     auditor,
	}
}

type MealInput struct {
	Date     string
	Title    string
	Adults   int
	Children int
	Time     *string
	Address  *string
}

func (service *MealService) requireAdminEvent(ctx context.Context, slug string, auth Authorization) (models.Event, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Event{}, apperrors.Classify(err)
	}
	if err := service.access.RequireAdmin(event, auth); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (service *MealService) CreateMeal(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input MealInput) (models.Meal, error) {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return models.Meal{}, err
	}
	if input.Date == "" {
		return models.Meal{}, fmt.Errorf("meal date required: %w", apperrors.ErrValidation)
	}

	meal := models.Meal{
		EventID:  event.ID,
		Date:     input.Date,
		Title:    sanitize.Text(input.Title),
		Adults:   input.Adults,
		Children: input.Children,
		Time:     input.Time,
		Address:  input.Address,
	}
	created, err := service.mealRepo.Create(ctx, meal)
	if err != nil {
		return models.Meal{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "meals", created.ID, nil, created)
	return created, nil
}

// CreateMealWithServices creates a meal and its default services in one
// action. The meal's headcounts seed the services at creation time only;
// later meal edits never touch existing services.
func (service *MealService) CreateMealWithServices(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input MealInput, serviceTitles []string) (models.Meal, error) {
	created, err := service.CreateMeal(ctx, slug, auth, meta, input)
	if err != nil {
		return models.Meal{}, err
	}

	for index, title := range serviceTitles {
		title = sanitize.Text(title)
		if title == "" {
			continue
		}
		child, err := service.serviceRepo.Create(ctx, models.Service{
			MealID:     created.ID,
			Title:      title,
			OrderIndex: index,
			Adults:     created.Adults,
			Children:   created.Children,
		})
		if err != nil {
			return models.Meal{}, apperrors.Classify(err)
		}
		created.Services = append(created.Services, child)
	}

	return created, nil
}

func (service *MealService) UpdateMeal(ctx context.Context, slug string, auth Authorization, meta RequestMeta, mealID string, input MealInput) (models.Meal, error) {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return models.Meal{}, err
	}

	meal, err := service.mealRepo.FindByID(ctx, mealID)
	if err != nil {
		return models.Meal{}, apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return models.Meal{}, fmt.Errorf("meal belongs to another event: %w", apperrors.ErrNotFound)
	}

	old := meal
	if input.Date != "" {
		meal.Date = input.Date
	}
	meal.Title = sanitize.Text(input.Title)
	meal.Adults = input.Adults
	meal.Children = input.Children
	meal.Time = input.Time
	meal.Address = input.Address

	// Headcount edits stop here: services keep whatever they were seeded
	// with (initialization-only propagation).
	if err := service.mealRepo.Update(ctx, meal); err != nil {
		return models.Meal{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "meals", meal.ID, old, meal)
	return meal, nil
}

func (service *MealService) DeleteMeal(ctx context.Context, slug string, auth Authorization, meta RequestMeta, mealID string) error {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return err
	}

	meal, err := service.mealRepo.FindByID(ctx, mealID)
	if err != nil {
		return apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return fmt.Errorf("meal belongs to another event: %w", apperrors.ErrNotFound)
	}

	if err := service.mealRepo.Delete(ctx, mealID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "meals", mealID, meal, nil)
	return nil
}

type ServiceInput struct {
	Title       string
	Description string
	Adults      int
	Children    int
	PeopleCount int
}

func (service *MealService) CreateService(ctx context.Context, slug string, auth Authorization, meta RequestMeta, mealID string, input ServiceInput) (models.Service, error) {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return models.Service{}, err
	}

	meal, err := service.mealRepo.FindByID(ctx, mealID)
	if err != nil {
		return models.Service{}, apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return models.Service{}, fmt.Errorf("meal belongs to another event: %w", apperrors.ErrNotFound)
	}

	title := sanitize.Text(input.Title)
	if title == "" {
		return models.Service{}, fmt.Errorf("service title required: %w", apperrors.ErrValidation)
	}

	order, err := service.serviceRepo.NextOrderIndex(ctx, mealID)
	if err != nil {
		return models.Service{}, apperrors.Classify(err)
	}

	adults, children := input.Adults, input.Children
	if adults == 0 && children == 0 {
		// Seed from the meal, creation-time only.
		adults, children = meal.Adults, meal.Children
	}

	created, err := service.serviceRepo.Create(ctx, models.Service{
		MealID:      mealID,
		Title:       title,
		Description: sanitize.Text(input.Description),
		OrderIndex:  order,
		Adults:      adults,
		Children:    children,
		PeopleCount: input.PeopleCount,
	})
	if err != nil {
		return models.Service{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "services", created.ID, nil, created)
	return created, nil
}

// findServiceInEvent resolves a service and verifies, through its
// parent meal, that it belongs to the given event.
func (service *MealService) findServiceInEvent(ctx context.Context, event models.Event, serviceID string) (models.Service, error) {
	existing, err := service.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return models.Service{}, apperrors.Classify(err)
	}
	meal, err := service.mealRepo.FindByID(ctx, existing.MealID)
	if err != nil {
		return models.Service{}, apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return models.Service{}, fmt.Errorf("service belongs to another event: %w", apperrors.ErrNotFound)
	}
	return existing, nil
}

func (service *MealService) UpdateService(ctx context.Context, slug string, auth Authorization, meta RequestMeta, serviceID string, input ServiceInput) (models.Service, error) {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return models.Service{}, err
	}

	existing, err := service.findServiceInEvent(ctx, event, serviceID)
	if err != nil {
		return models.Service{}, err
	}

	old := existing
	if title := sanitize.Text(input.Title); title != "" {
		existing.Title = title
	}
	existing.Description = sanitize.Text(input.Description)
	existing.Adults = input.Adults
	existing.Children = input.Children
	existing.PeopleCount = input.PeopleCount

	if err := service.serviceRepo.Update(ctx, existing); err != nil {
		return models.Service{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "services", existing.ID, old, existing)
	return existing, nil
}

func (service *MealService) DeleteService(ctx context.Context, slug string, auth Authorization, meta RequestMeta, serviceID string) error {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return err
	}

	existing, err := service.findServiceInEvent(ctx, event, serviceID)
	if err != nil {
		return err
	}

	if err := service.serviceRepo.Delete(ctx, serviceID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "services", serviceID, existing, nil)
	return nil
}
