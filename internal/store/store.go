// Package store holds one event's plan tree in memory and mutates it
// optimistically: every command applies its change locally first, then
// persists through the Actions boundary, and rolls back to the
// pre-mutation snapshot if persistence fails. Stale responses are
// dropped via a per-entity sequence so a newer command is never clobbered
// by an older one resolving late.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/sanitize"
)

// ErrReadOnly is returned by every mutating command when the store was
// loaded without a valid write key.
var ErrReadOnly = errors.New("plan is read-only")

// ErrUnknownEntity is returned when a command targets an id that is not
// in the tree.
var ErrUnknownEntity = errors.New("entity not in plan")

// ErrSuperseded is returned when a command's response resolved after a
// newer command took over its entity. The response reconciled nothing,
// so the outcome is neither a success nor a failure to report.
var ErrSuperseded = errors.New("superseded by a newer change")

// Actions is the persistence boundary the store mutates through. The
// production implementation calls the server actions; tests substitute
// a fake.
type Actions interface {
	UpdateEventSettings(ctx context.Context, event models.Event) (models.Event, error)

	CreateMeal(ctx context.Context, meal models.Meal) (models.Meal, error)
	CreateMealWithServices(ctx context.Context, meal models.Meal, serviceTitles []string) (models.Meal, error)
	UpdateMeal(ctx context.Context, meal models.Meal) (models.Meal, error)
	DeleteMeal(ctx context.Context, mealID string) error

	CreateService(ctx context.Context, service models.Service) (models.Service, error)
	UpdateService(ctx context.Context, service models.Service) (models.Service, error)
	DeleteService(ctx context.Context, serviceID string) error

	CreateItem(ctx context.Context, item models.Item) (models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) (models.Item, error)
	DeleteItem(ctx context.Context, itemID string) error
	AssignItem(ctx context.Context, itemID string, personID *string) error
	MoveItem(ctx context.Context, itemID, targetServiceID string, targetOrder *int) error
	SetItemChecked(ctx context.Context, itemID string, checked bool) error

	CreatePerson(ctx context.Context, person models.Person) (models.Person, error)
	UpdatePerson(ctx context.Context, person models.Person) (models.Person, error)
	DeletePerson(ctx context.Context, personID string) error
	ClaimPerson(ctx context.Context, personID, userID string) (models.Person, error)
	UnclaimPerson(ctx context.Context, personID string) (models.Person, error)
	UpdatePersonStatus(ctx context.Context, personID string, status *models.RSVPStatus, guestAdults, guestChildren int) (models.Person, error)

	CreateIngredient(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error)
	UpdateIngredient(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error)
	DeleteIngredient(ctx context.Context, ingredientID string) error
	DeleteAllIngredients(ctx context.Context, itemID string) error
	GenerateIngredients(ctx context.Context, itemID string, peopleCount int) ([]models.Ingredient, error)
	GenerateAllIngredients(ctx context.Context, generateIDs []string) (models.Plan, error)
}

// Notifier surfaces command outcomes to the user. Celebrate fires on
// the confetti easter egg when an item lands on the right person.
type Notifier interface {
	Success(message string)
	Error(message string)
	Celebrate(personName string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Success(string)   {}
func (NopNotifier) Error(string)     {}
func (NopNotifier) Celebrate(string) {}

type Store struct {
	mu       sync.Mutex
	plan     models.Plan
	index    map[string]path
	readOnly bool
	seq      map[string]uint64

	actions  Actions
	notifier Notifier
}

func New(actions Actions, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store{
		actions:  actions,
		notifier: notifier,
		index:    map[string]path{},
		seq:      map[string]uint64{},
	}
}

// SetPlan replaces the whole tree, typically after a fresh fetch.
func (s *Store) SetPlan(plan models.Plan, writeEnabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = clonePlan(plan)
	sortMeals(&s.plan)
	s.index = buildIndex(s.plan)
	s.readOnly = !writeEnabled
}

// Plan returns a deep copy of the current tree.
func (s *Store) Plan() models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePlan(s.plan)
}

func (s *Store) ReadOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readOnly
}

// ItemContext is an item with its parent service and meal.
type ItemContext struct {
	Item    models.Item
	Service models.Service
	Meal    models.Meal
}

// FindItem locates an item and its parents in one index lookup.
func (s *Store) FindItem(itemID string) (ItemContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	location, ok := s.index[itemID]
	if !ok || location.item < 0 {
		return ItemContext{}, false
	}
	meal := s.plan.Meals[location.meal]
	service := meal.Services[location.service]
	return ItemContext{
		Item:    service.Items[location.item],
		Service: service,
		Meal:    meal,
	}, true
}

func (s *Store) FindPerson(personID string) (models.Person, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	location, ok := s.index[personID]
	if !ok || location.person < 0 {
		return models.Person{}, false
	}
	return s.plan.People[location.person], true
}

// mutate runs one command: guard, snapshot, optimistic apply, persist,
// reconcile. Apply and reconcile run under the lock; persist does not.
// A command superseded by a newer one on the same entity reconciles
// nothing, success or failure.
func (s *Store) mutate(
	ctx context.Context,
	entityID string,
	apply func(plan *models.Plan) error,
	persist func(ctx context.Context) (func(plan *models.Plan), error),
) error {
	s.mu.Lock()
	if s.readOnly {
		s.mu.Unlock()
		s.notifier.Error("This plan is read-only")
		return ErrReadOnly
	}

	snapshot := clonePlan(s.plan)
	if err := apply(&s.plan); err != nil {
		s.mu.Unlock()
		s.notifier.Error(err.Error())
		return err
	}
	s.index = buildIndex(s.plan)
	s.seq[entityID]++
	ticket := s.seq[entityID]
	s.mu.Unlock()

	reconcile, err := persist(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[entityID] != ticket {
		// A newer command owns this entity now; drop this response and
		// tell the caller so no notification fires for it.
		return ErrSuperseded
	}
	if err != nil {
		s.plan = snapshot
		s.index = buildIndex(s.plan)
		s.notifier.Error("Could not save the change, restored the previous state")
		return err
	}
	if reconcile != nil {
		reconcile(&s.plan)
		s.index = buildIndex(s.plan)
	}
	return nil
}

func (s *Store) locate(id string) (path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	location, ok := s.index[id]
	return location, ok
}

// --- event ---

func (s *Store) UpdateEventSettings(ctx context.Context, event models.Event) error {
	err := s.mutate(ctx, event.ID,
		func(plan *models.Plan) error {
			plan.Event = event
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdateEventSettings(ctx, event)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { plan.Event = canonical }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Settings saved")
	}
	return err
}

// --- meals ---

func (s *Store) CreateMeal(ctx context.Context, meal models.Meal) error {
	placeholder := meal
	placeholder.ID = uuid.NewString()

	err := s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			insertMeal(plan, placeholder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreateMeal(ctx, meal)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceMeal(plan, placeholder.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Meal added")
	}
	return err
}

func (s *Store) CreateMealWithServices(ctx context.Context, meal models.Meal, serviceTitles []string) error {
	placeholder := meal
	placeholder.ID = uuid.NewString()
	for position, title := range serviceTitles {
		placeholder.Services = append(placeholder.Services, models.Service{
			ID:         uuid.NewString(),
			MealID:     placeholder.ID,
			Title:      title,
			OrderIndex: position,
			Adults:     meal.Adults,
			Children:   meal.Children,
		})
	}

	err := s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			insertMeal(plan, placeholder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreateMealWithServices(ctx, meal, serviceTitles)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) {
				removeMeal(plan, placeholder.ID)
				insertMeal(plan, canonical)
			}, nil
		},
	)
	if err == nil {
		s.notifier.Success("Meal added")
	}
	return err
}

func (s *Store) UpdateMeal(ctx context.Context, meal models.Meal) error {
	location, ok := s.locate(meal.ID)
	if !ok {
		return fmt.Errorf("meal %s: %w", meal.ID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, meal.ID,
		func(plan *models.Plan) error {
			meal.Services = plan.Meals[location.meal].Services
			plan.Meals[location.meal] = meal
			sortMeals(plan)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdateMeal(ctx, meal)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceMeal(plan, meal.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Meal updated")
	}
	return err
}

// DeleteMeal removes the meal and, with it, all of its services and
// items in the same synchronous update.
func (s *Store) DeleteMeal(ctx context.Context, mealID string) error {
	if _, ok := s.locate(mealID); !ok {
		return fmt.Errorf("meal %s: %w", mealID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, mealID,
		func(plan *models.Plan) error {
			removeMeal(plan, mealID)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeleteMeal(ctx, mealID)
		},
	)
	if err == nil {
		s.notifier.Success("Meal deleted")
	}
	return err
}

// --- services ---

func (s *Store) CreateService(ctx context.Context, service models.Service) error {
	location, ok := s.locate(service.MealID)
	if !ok {
		return fmt.Errorf("meal %s: %w", service.MealID, ErrUnknownEntity)
	}

	placeholder := service
	placeholder.ID = uuid.NewString()

	err := s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			insertService(plan, location.meal, placeholder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreateService(ctx, service)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceService(plan, placeholder.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Service added")
	}
	return err
}

func (s *Store) UpdateService(ctx context.Context, service models.Service) error {
	location, ok := s.locate(service.ID)
	if !ok {
		return fmt.Errorf("service %s: %w", service.ID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, service.ID,
		func(plan *models.Plan) error {
			service.Items = plan.Meals[location.meal].Services[location.service].Items
			plan.Meals[location.meal].Services[location.service] = service
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdateService(ctx, service)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceService(plan, service.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Service updated")
	}
	return err
}

func (s *Store) DeleteService(ctx context.Context, serviceID string) error {
	location, ok := s.locate(serviceID)
	if !ok {
		return fmt.Errorf("service %s: %w", serviceID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, serviceID,
		func(plan *models.Plan) error {
			removeService(plan, location)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeleteService(ctx, serviceID)
		},
	)
	if err == nil {
		s.notifier.Success("Service deleted")
	}
	return err
}

// --- items ---

func (s *Store) CreateItem(ctx context.Context, item models.Item) error {
	location, ok := s.locate(item.ServiceID)
	if !ok {
		return fmt.Errorf("service %s: %w", item.ServiceID, ErrUnknownEntity)
	}

	placeholder := item
	placeholder.ID = uuid.NewString()

	err := s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			service := &plan.Meals[location.meal].Services[location.service]
			spliceItem(service, placeholder, nil)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreateItem(ctx, item)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceItem(plan, placeholder.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Item added")
	}
	return err
}

func (s *Store) UpdateItem(ctx context.Context, item models.Item) error {
	location, ok := s.locate(item.ID)
	if !ok {
		return fmt.Errorf("item %s: %w", item.ID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, item.ID,
		func(plan *models.Plan) error {
			existing := &plan.Meals[location.meal].Services[location.service].Items[location.item]
			item.Ingredients = existing.Ingredients
			*existing = item
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdateItem(ctx, item)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replaceItem(plan, item.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Item updated")
	}
	return err
}

func (s *Store) DeleteItem(ctx context.Context, itemID string) error {
	location, ok := s.locate(itemID)
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, itemID,
		func(plan *models.Plan) error {
			removeItem(plan, location)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeleteItem(ctx, itemID)
		},
	)
	if err == nil {
		s.notifier.Success("Item deleted")
	}
	return err
}

// AssignItem sets or clears the item's volunteer. Landing an item on a
// person named Cécile fires the celebration hook; purely cosmetic.
func (s *Store) AssignItem(ctx context.Context, itemID string, personID *string) error {
	location, ok := s.locate(itemID)
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, itemID,
		func(plan *models.Plan) error {
			plan.Meals[location.meal].Services[location.service].Items[location.item].PersonID = personID
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.AssignItem(ctx, itemID, personID)
		},
	)
	if err != nil {
		return err
	}

	if personID != nil {
		if person, ok := s.FindPerson(*personID); ok {
			s.notifier.Success("Assigned to " + person.Name)
			if sanitize.FoldName(person.Name) == "cecile" {
				s.notifier.Celebrate(person.Name)
			}
			return nil
		}
	}
	s.notifier.Success("Assignment updated")
	return nil
}

func (s *Store) MoveItem(ctx context.Context, itemID, targetServiceID string, targetOrder *int) error {
	source, ok := s.locate(itemID)
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}
	target, ok := s.locate(targetServiceID)
	if !ok {
		return fmt.Errorf("service %s: %w", targetServiceID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, itemID,
		func(plan *models.Plan) error {
			item := plan.Meals[source.meal].Services[source.service].Items[source.item]
			removeItem(plan, source)
			item.ServiceID = targetServiceID
			spliceItem(&plan.Meals[target.meal].Services[target.service], item, targetOrder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.MoveItem(ctx, itemID, targetServiceID, targetOrder)
		},
	)
	if err == nil {
		s.notifier.Success("Item moved")
	}
	return err
}

func (s *Store) SetItemChecked(ctx context.Context, itemID string, checked bool) error {
	location, ok := s.locate(itemID)
	if !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}

	return s.mutate(ctx, itemID,
		func(plan *models.Plan) error {
			plan.Meals[location.meal].Services[location.service].Items[location.item].Checked = checked
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.SetItemChecked(ctx, itemID, checked)
		},
	)
}

// --- people ---

func (s *Store) CreatePerson(ctx context.Context, person models.Person) error {
	placeholder := person
	placeholder.ID = uuid.NewString()

	err := s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			plan.People = append(plan.People, placeholder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreatePerson(ctx, person)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replacePerson(plan, placeholder.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Person added")
	}
	return err
}

func (s *Store) UpdatePerson(ctx context.Context, person models.Person) error {
	location, ok := s.locate(person.ID)
	if !ok {
		return fmt.Errorf("person %s: %w", person.ID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, person.ID,
		func(plan *models.Plan) error {
			plan.People[location.person] = person
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdatePerson(ctx, person)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replacePerson(plan, person.ID, canonical) }, nil
		},
	)
	if err == nil {
		s.notifier.Success("Person updated")
	}
	return err
}

func (s *Store) DeletePerson(ctx context.Context, personID string) error {
	if _, ok := s.locate(personID); !ok {
		return fmt.Errorf("person %s: %w", personID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, personID,
		func(plan *models.Plan) error {
			removePerson(plan, personID)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeletePerson(ctx, personID)
		},
	)
	if err == nil {
		s.notifier.Success("Person removed")
	}
	return err
}

func (s *Store) ClaimPerson(ctx context.Context, personID, userID string) error {
	location, ok := s.locate(personID)
	if !ok {
		return fmt.Errorf("person %s: %w", personID, ErrUnknownEntity)
	}

	return s.mutate(ctx, personID,
		func(plan *models.Plan) error {
			plan.People[location.person].UserID = &userID
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.ClaimPerson(ctx, personID, userID)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replacePerson(plan, personID, canonical) }, nil
		},
	)
}

func (s *Store) UnclaimPerson(ctx context.Context, personID string) error {
	location, ok := s.locate(personID)
	if !ok {
		return fmt.Errorf("person %s: %w", personID, ErrUnknownEntity)
	}

	return s.mutate(ctx, personID,
		func(plan *models.Plan) error {
			plan.People[location.person].UserID = nil
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UnclaimPerson(ctx, personID)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replacePerson(plan, personID, canonical) }, nil
		},
	)
}

// UpdateStatus mirrors the RSVP rules locally so the optimistic state
// matches what the server will decide: guest counts reset when entering
// confirmed, and zero out for any non-confirmed status.
func (s *Store) UpdateStatus(ctx context.Context, personID string, status *models.RSVPStatus, guestAdults, guestChildren int) error {
	location, ok := s.locate(personID)
	if !ok {
		return fmt.Errorf("person %s: %w", personID, ErrUnknownEntity)
	}

	return s.mutate(ctx, personID,
		func(plan *models.Plan) error {
			person := &plan.People[location.person]
			confirming := status != nil && *status == models.RSVPStatusConfirmed
			if !confirming || !person.Confirmed() {
				guestAdults, guestChildren = 0, 0
			}
			person.Status = status
			person.GuestAdults = guestAdults
			person.GuestChildren = guestChildren
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdatePersonStatus(ctx, personID, status, guestAdults, guestChildren)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) { replacePerson(plan, personID, canonical) }, nil
		},
	)
}

// --- ingredients ---

func (s *Store) AddIngredient(ctx context.Context, ingredient models.Ingredient) error {
	location, ok := s.locate(ingredient.ItemID)
	if !ok {
		return fmt.Errorf("item %s: %w", ingredient.ItemID, ErrUnknownEntity)
	}

	placeholder := ingredient
	placeholder.ID = uuid.NewString()

	return s.mutate(ctx, placeholder.ID,
		func(plan *models.Plan) error {
			item := &plan.Meals[location.meal].Services[location.service].Items[location.item]
			placeholder.OrderIndex = len(item.Ingredients)
			item.Ingredients = append(item.Ingredients, placeholder)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.CreateIngredient(ctx, ingredient)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) {
				if location, ok := buildIndex(*plan)[placeholder.ID]; ok && location.ingredient >= 0 {
					plan.Meals[location.meal].Services[location.service].Items[location.item].Ingredients[location.ingredient] = canonical
				}
			}, nil
		},
	)
}

func (s *Store) UpdateIngredient(ctx context.Context, ingredient models.Ingredient) error {
	location, ok := s.locate(ingredient.ID)
	if !ok {
		return fmt.Errorf("ingredient %s: %w", ingredient.ID, ErrUnknownEntity)
	}

	return s.mutate(ctx, ingredient.ID,
		func(plan *models.Plan) error {
			plan.Meals[location.meal].Services[location.service].Items[location.item].Ingredients[location.ingredient] = ingredient
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			canonical, err := s.actions.UpdateIngredient(ctx, ingredient)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) {
				if location, ok := buildIndex(*plan)[ingredient.ID]; ok && location.ingredient >= 0 {
					plan.Meals[location.meal].Services[location.service].Items[location.item].Ingredients[location.ingredient] = canonical
				}
			}, nil
		},
	)
}

func (s *Store) DeleteIngredient(ctx context.Context, ingredientID string) error {
	location, ok := s.locate(ingredientID)
	if !ok {
		return fmt.Errorf("ingredient %s: %w", ingredientID, ErrUnknownEntity)
	}

	return s.mutate(ctx, ingredientID,
		func(plan *models.Plan) error {
			item := &plan.Meals[location.meal].Services[location.service].Items[location.item]
			item.Ingredients = append(item.Ingredients[:location.ingredient], item.Ingredients[location.ingredient+1:]...)
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeleteIngredient(ctx, ingredientID)
		},
	)
}

// DeleteAllIngredients clears the item's ingredient list in one command.
func (s *Store) DeleteAllIngredients(ctx context.Context, itemID string) error {
	location, ok := s.locate(itemID)
	if !ok || location.item < 0 {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}

	return s.mutate(ctx, itemID,
		func(plan *models.Plan) error {
			plan.Meals[location.meal].Services[location.service].Items[location.item].Ingredients = nil
			return nil
		},
		func(ctx context.Context) (func(*models.Plan), error) {
			return nil, s.actions.DeleteAllIngredients(ctx, itemID)
		},
	)
}

// GenerateIngredients asks the server for a generated list and replaces
// the item's ingredients with the result. There is no optimistic guess;
// the tree changes only once the response lands, and a superseding call
// for the same item drops the older response.
func (s *Store) GenerateIngredients(ctx context.Context, itemID string, peopleCount int) error {
	if _, ok := s.locate(itemID); !ok {
		return fmt.Errorf("item %s: %w", itemID, ErrUnknownEntity)
	}

	err := s.mutate(ctx, itemID,
		func(plan *models.Plan) error { return nil },
		func(ctx context.Context) (func(*models.Plan), error) {
			generated, err := s.actions.GenerateIngredients(ctx, itemID, peopleCount)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) {
				if location, ok := buildIndex(*plan)[itemID]; ok && location.item >= 0 {
					plan.Meals[location.meal].Services[location.service].Items[location.item].Ingredients = generated
				}
			}, nil
		},
	)
	if err == nil {
		s.notifier.Success("Ingredients generated")
	}
	return err
}

// GenerateAllIngredients runs the bulk generate-and-categorize batch and
// then swaps in the refreshed plan the server returns. No optimistic
// change: the batch touches too many items to patch piecemeal.
func (s *Store) GenerateAllIngredients(ctx context.Context, generateIDs []string) error {
	s.mu.Lock()
	eventID := s.plan.Event.ID
	s.mu.Unlock()

	err := s.mutate(ctx, eventID,
		func(plan *models.Plan) error { return nil },
		func(ctx context.Context) (func(*models.Plan), error) {
			fresh, err := s.actions.GenerateAllIngredients(ctx, generateIDs)
			if err != nil {
				return nil, err
			}
			return func(plan *models.Plan) {
				*plan = clonePlan(fresh)
				sortMeals(plan)
			}, nil
		},
	)
	if err == nil {
		s.notifier.Success("Ingredients generated")
	}
	return err
}
