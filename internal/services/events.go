package services

import (
	"context"
	"fmt"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/sanitize"
)

type EventService struct {
	eventRepo repository.EventRepository
	planRepo  repository.PlanRepository
	access    *AccessService
	auditor   *Auditor
}

func NewEventService(
	eventRepo repository.EventRepository,
	planRepo repository.PlanRepository,
	access *AccessService,
	auditor *Auditor,
) *EventService {
	return &EventService{eventRepo: eventRepo, planRepo: planRepo, access: access, auditor: auditor}
}

type CreateEventInput struct {
	Name        string
	Description string
	Adults      *int
	Children    *int
}

// CreateEvent mints the slug and the admin key. The returned event carries
// the key; it is shown exactly once to the creator.
func (service *EventService) CreateEvent(ctx context.Context, meta RequestMeta, input CreateEventInput) (models.Event, error) {
	name := sanitize.Text(input.Name)
	if name == "" {
		return models.Event{}, fmt.Errorf("event name required: %w", apperrors.ErrValidation)
	}

	event := models.Event{
		Slug:        sanitize.Slug(name),
		Name:        name,
		Description: sanitize.Text(input.Description),
		AdminKey:    generateKey(),
		Adults:      input.Adults,
		Children:    input.Children,
	}

	created, err := service.eventRepo.Create(ctx, event)
	if err != nil {
		return models.Event{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "events", created.ID, nil, created)
	return created, nil
}

type UpdateEventInput struct {
	Name        string
	Description string
	Adults      *int
	Children    *int
}

// UpdateSettings is last-write-wins; there is no conflict resolution on
// event settings.
func (service *EventService) UpdateSettings(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input UpdateEventInput) (models.Event, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Event{}, apperrors.Classify(err)
	}
	if err := service.access.RequireAdmin(event, auth); err != nil {
		return models.Event{}, err
	}

	old := event
	if name := sanitize.Text(input.Name); name != "" {
		event.Name = name
	}
	event.Description = sanitize.Text(input.Description)
	event.Adults = input.Adults
	event.Children = input.Children

	if err := service.eventRepo.Update(ctx, event); err != nil {
		return models.Event{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "events", event.ID, old, event)
	return event, nil
}

// FetchPlan loads the full tree for one event. Key validity only controls
// the writeEnabled flag; the plan itself is readable by anyone with the
// slug.
func (service *EventService) FetchPlan(ctx context.Context, slug string, key string) (models.Plan, bool, error) {
	plan, err := service.planRepo.FetchPlan(ctx, slug)
	if err != nil {
		return models.Plan{}, false, apperrors.Classify(err)
	}
	writeEnabled := service.access.WriteEnabled(plan.Event, sanitize.Key(key))
	return plan, writeEnabled, nil
}
