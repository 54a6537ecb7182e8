package services

import (
	"context"
	"fmt"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/sanitize"
	"github.com/yogz/colist/internal/shopping"
)

type ItemService struct {
	eventRepo      repository.EventRepository
	serviceRepo    repository.ServiceRepository
	mealRepo       repository.MealRepository
	itemRepo       repository.ItemRepository
	ingredientRepo repository.IngredientRepository
	access         *AccessService
	auditor        *Auditor
}

func NewItemService(
	eventRepo repository.EventRepository,
	serviceRepo repository.ServiceRepository,
	mealRepo repository.MealRepository,
	itemRepo repository.ItemRepository,
	ingredientRepo repository.IngredientRepository,
	access *AccessService,
	auditor *Auditor,
) *ItemService {
	return &ItemService{
		eventRepo:      eventRepo,
		serviceRepo:    serviceRepo,
		mealRepo:       mealRepo,
		itemRepo:       itemRepo,
		ingredientRepo: ingredientRepo,
		access:         access,
		auditor:        auditor,
	}
}

type ItemInput struct {
	Name     string
	Quantity *string
	Note     string
	PersonID *string
	Price    *float64
}

func (service *ItemService) requireEvent(ctx context.Context, slug string) (models.Event, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Event{}, apperrors.Classify(err)
	}
	return event, nil
}

// findInEvent loads an item and checks it belongs to the event's tree.
func (service *ItemService) findInEvent(ctx context.Context, event models.Event, itemID string) (models.Item, error) {
	item, err := service.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	parent, err := service.serviceRepo.FindByID(ctx, item.ServiceID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	meal, err := service.mealRepo.FindByID(ctx, parent.MealID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	if meal.EventID != event.ID {
		return models.Item{}, fmt.Errorf("item belongs to another event: %w", apperrors.ErrNotFound)
	}
	return item, nil
}

func (service *ItemService) CreateItem(ctx context.Context, slug string, auth Authorization, meta RequestMeta, serviceID string, input ItemInput) (models.Item, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Item{}, err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Item{}, err
	}

	name := sanitize.Text(input.Name)
	if name == "" {
		return models.Item{}, fmt.Errorf("item name required: %w", apperrors.ErrValidation)
	}

	if _, err := service.serviceRepo.FindByID(ctx, serviceID); err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	order, err := service.itemRepo.NextOrderIndex(ctx, serviceID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}

	created, err := service.itemRepo.Create(ctx, models.Item{
		ServiceID:  serviceID,
		Name:       name,
		Quantity:   input.Quantity,
		Note:       sanitize.Text(input.Note),
		PersonID:   input.PersonID,
		OrderIndex: order,
		Price:      input.Price,
	})
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "items", created.ID, nil, created)
	return created, nil
}

func (service *ItemService) UpdateItem(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string, input ItemInput) (models.Item, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Item{}, err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Item{}, err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return models.Item{}, err
	}

	old := item
	if name := sanitize.Text(input.Name); name != "" {
		item.Name = name
	}
	item.Quantity = input.Quantity
	item.Note = sanitize.Text(input.Note)
	item.Price = input.Price

	if err := service.itemRepo.Update(ctx, item); err != nil {
		return models.Item{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "items", item.ID, old, item)
	return item, nil
}

func (service *ItemService) DeleteItem(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return err
	}

	if err := service.itemRepo.Delete(ctx, itemID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "items", itemID, item, nil)
	return nil
}

// AssignItem sets or clears an item's volunteer. A guest token may only
// assign to, or unassign from, its own person; the admin key may assign
// anyone.
func (service *ItemService) AssignItem(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string, personID *string) (models.Item, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Item{}, err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return models.Item{}, err
	}

	// Scope check targets the person being set, or the previous assignee
	// when clearing.
	target := personID
	if target == nil {
		target = item.PersonID
	}
	if target != nil {
		if err := service.access.RequirePersonScope(ctx, event, auth, *target); err != nil {
			return models.Item{}, err
		}
	} else if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Item{}, err
	}

	old := item
	if err := service.itemRepo.Assign(ctx, itemID, personID); err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	item.PersonID = personID

	service.auditor.Record(ctx, meta, "update", "items", itemID, old, item)
	return item, nil
}

// MoveItem relocates an item to another service, optionally at a target
// position; a nil targetOrder appends.
func (service *ItemService) MoveItem(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID, targetServiceID string, targetOrder *int) (models.Item, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Item{}, err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Item{}, err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return models.Item{}, err
	}

	target, err := service.serviceRepo.FindByID(ctx, targetServiceID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	targetMeal, err := service.mealRepo.FindByID(ctx, target.MealID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}
	if targetMeal.EventID != event.ID {
		return models.Item{}, fmt.Errorf("target service belongs to another event: %w", apperrors.ErrNotFound)
	}

	old := item
	if err := service.itemRepo.Move(ctx, itemID, targetServiceID, targetOrder); err != nil {
		return models.Item{}, apperrors.Classify(err)
	}

	moved, err := service.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return models.Item{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "items", itemID, old, moved)
	return moved, nil
}

func (service *ItemService) ToggleChecked(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string, checked bool) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	if _, err := service.findInEvent(ctx, event, itemID); err != nil {
		return err
	}
	if err := service.itemRepo.SetChecked(ctx, itemID, checked); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}

type IngredientInput struct {
	Name     string
	Quantity *string
}

func (service *ItemService) AddIngredient(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string, input IngredientInput) (models.Ingredient, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Ingredient{}, err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Ingredient{}, err
	}

	if _, err := service.findInEvent(ctx, event, itemID); err != nil {
		return models.Ingredient{}, err
	}

	name := sanitize.Text(input.Name)
	if name == "" {
		return models.Ingredient{}, fmt.Errorf("ingredient name required: %w", apperrors.ErrValidation)
	}

	existing, err := service.ingredientRepo.FindByItemID(ctx, itemID)
	if err != nil {
		return models.Ingredient{}, apperrors.Classify(err)
	}

	created, err := service.ingredientRepo.Create(ctx, models.Ingredient{
		ItemID:     itemID,
		Name:       name,
		Quantity:   input.Quantity,
		OrderIndex: len(existing),
	})
	if err != nil {
		return models.Ingredient{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "ingredients", created.ID, nil, created)
	return created, nil
}

func (service *ItemService) UpdateIngredient(ctx context.Context, slug string, auth Authorization, meta RequestMeta, ingredientID string, input IngredientInput) (models.Ingredient, error) {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return models.Ingredient{}, err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return models.Ingredient{}, err
	}

	ingredient, err := service.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return models.Ingredient{}, apperrors.Classify(err)
	}
	if _, err := service.findInEvent(ctx, event, ingredient.ItemID); err != nil {
		return models.Ingredient{}, err
	}

	old := ingredient
	if name := sanitize.Text(input.Name); name != "" {
		ingredient.Name = name
	}
	ingredient.Quantity = input.Quantity

	if err := service.ingredientRepo.Update(ctx, ingredient); err != nil {
		return models.Ingredient{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "ingredients", ingredient.ID, old, ingredient)
	return ingredient, nil
}

func (service *ItemService) DeleteIngredient(ctx context.Context, slug string, auth Authorization, meta RequestMeta, ingredientID string) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	ingredient, err := service.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return apperrors.Classify(err)
	}
	if _, err := service.findInEvent(ctx, event, ingredient.ItemID); err != nil {
		return err
	}

	if err := service.ingredientRepo.Delete(ctx, ingredientID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "ingredients", ingredientID, ingredient, nil)
	return nil
}

// DeleteAllIngredients clears an item's ingredient list, typically
// before regenerating it from scratch.
func (service *ItemService) DeleteAllIngredients(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return err
	}

	if err := service.ingredientRepo.DeleteByItemID(ctx, itemID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "ingredients", itemID, item.Ingredients, nil)
	return nil
}

// ApplyShoppingUpdate patches one source item of an aggregated shopping
// row. Nil fields are left as they are.
func (service *ItemService) ApplyShoppingUpdate(ctx context.Context, slug string, auth Authorization, meta RequestMeta, itemID string, update shopping.ItemUpdate) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	item, err := service.findInEvent(ctx, event, itemID)
	if err != nil {
		return err
	}

	old := item
	if update.Name != nil {
		if name := sanitize.Text(*update.Name); name != "" {
			item.Name = name
		}
	}
	if update.Quantity != nil {
		item.Quantity = update.Quantity
	}
	if update.Checked != nil {
		item.Checked = *update.Checked
	}

	if err := service.itemRepo.Update(ctx, item); err != nil {
		return apperrors.Classify(err)
	}
	if update.Checked != nil && item.Checked != old.Checked {
		if err := service.itemRepo.SetChecked(ctx, itemID, item.Checked); err != nil {
			return apperrors.Classify(err)
		}
	}

	service.auditor.Record(ctx, meta, "update", "items", itemID, old, item)
	return nil
}

func (service *ItemService) SetIngredientChecked(ctx context.Context, slug string, auth Authorization, ingredientID string, checked bool) error {
	event, err := service.requireEvent(ctx, slug)
	if err != nil {
		return err
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return err
	}

	ingredient, err := service.ingredientRepo.FindByID(ctx, ingredientID)
	if err != nil {
		return apperrors.Classify(err)
	}
	if _, err := service.findInEvent(ctx, event, ingredient.ItemID); err != nil {
		return err
	}

	ingredient.Checked = checked
	if err := service.ingredientRepo.Update(ctx, ingredient); err != nil {
		return apperrors.Classify(err)
	}
	return nil
}
