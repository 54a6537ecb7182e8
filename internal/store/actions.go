package store

import (
	"context"

	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/services"
)

// ServiceActions implements Actions directly on the service layer,
// bound to one event and one caller. It is what a server-rendered
// session uses; a browser client would implement Actions over the JSON
// API instead.
type ServiceActions struct {
	Slug string
	Auth services.Authorization
	Meta services.RequestMeta

	Events      *services.EventService
	Meals       *services.MealService
	Items       *services.ItemService
	People      *services.PersonService
	Ingredients *services.IngredientService
}

var _ Actions = (*ServiceActions)(nil)

func (a *ServiceActions) UpdateEventSettings(ctx context.Context, event models.Event) (models.Event, error) {
	return a.Events.UpdateSettings(ctx, a.Slug, a.Auth, a.Meta, services.UpdateEventInput{
		Name:        event.Name,
		Description: event.Description,
		Adults:      event.Adults,
		Children:    event.Children,
	})
}

func mealInput(meal models.Meal) services.MealInput {
	return services.MealInput{
		Date:     meal.Date,
		Title:    meal.Title,
		Adults:   meal.Adults,
		Children: meal.Children,
		Time:     meal.Time,
		Address:  meal.Address,
	}
}

func (a *ServiceActions) CreateMeal(ctx context.Context, meal models.Meal) (models.Meal, error) {
	return a.Meals.CreateMeal(ctx, a.Slug, a.Auth, a.Meta, mealInput(meal))
}

func (a *ServiceActions) CreateMealWithServices(ctx context.Context, meal models.Meal, serviceTitles []string) (models.Meal, error) {
	return a.Meals.CreateMealWithServices(ctx, a.Slug, a.Auth, a.Meta, mealInput(meal), serviceTitles)
}

func (a *ServiceActions) UpdateMeal(ctx context.Context, meal models.Meal) (models.Meal, error) {
	return a.Meals.UpdateMeal(ctx, a.Slug, a.Auth, a.Meta, meal.ID, mealInput(meal))
}

func (a *ServiceActions) DeleteMeal(ctx context.Context, mealID string) error {
	return a.Meals.DeleteMeal(ctx, a.Slug, a.Auth, a.Meta, mealID)
}

func serviceInput(service models.Service) services.ServiceInput {
	return services.ServiceInput{
		Title:       service.Title,
		Description: service.Description,
		Adults:      service.Adults,
		Children:    service.Children,
		PeopleCount: service.PeopleCount,
	}
}

func (a *ServiceActions) CreateService(ctx context.Context, service models.Service) (models.Service, error) {
	return a.Meals.CreateService(ctx, a.Slug, a.Auth, a.Meta, service.MealID, serviceInput(service))
}

func (a *ServiceActions) UpdateService(ctx context.Context, service models.Service) (models.Service, error) {
	return a.Meals.UpdateService(ctx, a.Slug, a.Auth, a.Meta, service.ID, serviceInput(service))
}

func (a *ServiceActions) DeleteService(ctx context.Context, serviceID string) error {
	return a.Meals.DeleteService(ctx, a.Slug, a.Auth, a.Meta, serviceID)
}

func itemInput(item models.Item) services.ItemInput {
	return services.ItemInput{
		Name:     item.Name,
		Quantity: item.Quantity,
		Note:     item.Note,
		PersonID: item.PersonID,
		Price:    item.Price,
	}
}

func (a *ServiceActions) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	return a.Items.CreateItem(ctx, a.Slug, a.Auth, a.Meta, item.ServiceID, itemInput(item))
}

func (a *ServiceActions) UpdateItem(ctx context.Context, item models.Item) (models.Item, error) {
	return a.Items.UpdateItem(ctx, a.Slug, a.Auth, a.Meta, item.ID, itemInput(item))
}

func (a *ServiceActions) DeleteItem(ctx context.Context, itemID string) error {
	return a.Items.DeleteItem(ctx, a.Slug, a.Auth, a.Meta, itemID)
}

func (a *ServiceActions) AssignItem(ctx context.Context, itemID string, personID *string) error {
	_, err := a.Items.AssignItem(ctx, a.Slug, a.Auth, a.Meta, itemID, personID)
	return err
}

func (a *ServiceActions) MoveItem(ctx context.Context, itemID, targetServiceID string, targetOrder *int) error {
	_, err := a.Items.MoveItem(ctx, a.Slug, a.Auth, a.Meta, itemID, targetServiceID, targetOrder)
	return err
}

func (a *ServiceActions) SetItemChecked(ctx context.Context, itemID string, checked bool) error {
	return a.Items.ToggleChecked(ctx, a.Slug, a.Auth, a.Meta, itemID, checked)
}

func personInput(person models.Person) services.PersonInput {
	return services.PersonInput{
		Name:  person.Name,
		Emoji: person.Emoji,
		Image: person.Image,
	}
}

func (a *ServiceActions) CreatePerson(ctx context.Context, person models.Person) (models.Person, error) {
	created, err := a.People.CreatePerson(ctx, a.Slug, a.Auth, a.Meta, personInput(person))
	if err != nil {
		return models.Person{}, err
	}
	return created.Person, nil
}

func (a *ServiceActions) UpdatePerson(ctx context.Context, person models.Person) (models.Person, error) {
	return a.People.UpdatePerson(ctx, a.Slug, a.Auth, a.Meta, person.ID, personInput(person))
}

func (a *ServiceActions) DeletePerson(ctx context.Context, personID string) error {
	return a.People.DeletePerson(ctx, a.Slug, a.Auth, a.Meta, personID)
}

func (a *ServiceActions) ClaimPerson(ctx context.Context, personID, userID string) (models.Person, error) {
	claimed, err := a.People.ClaimPerson(ctx, a.Slug, a.Auth, a.Meta, personID, userID)
	if err != nil {
		return models.Person{}, err
	}
	return claimed.Person, nil
}

func (a *ServiceActions) UnclaimPerson(ctx context.Context, personID string) (models.Person, error) {
	return a.People.UnclaimPerson(ctx, a.Slug, a.Auth, a.Meta, personID)
}

func (a *ServiceActions) UpdatePersonStatus(ctx context.Context, personID string, status *models.RSVPStatus, guestAdults, guestChildren int) (models.Person, error) {
	return a.People.UpdateStatus(ctx, a.Slug, a.Auth, a.Meta, personID, status, guestAdults, guestChildren)
}

func (a *ServiceActions) CreateIngredient(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error) {
	return a.Items.AddIngredient(ctx, a.Slug, a.Auth, a.Meta, ingredient.ItemID, services.IngredientInput{
		Name:     ingredient.Name,
		Quantity: ingredient.Quantity,
	})
}

func (a *ServiceActions) UpdateIngredient(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error) {
	return a.Items.UpdateIngredient(ctx, a.Slug, a.Auth, a.Meta, ingredient.ID, services.IngredientInput{
		Name:     ingredient.Name,
		Quantity: ingredient.Quantity,
	})
}

func (a *ServiceActions) DeleteIngredient(ctx context.Context, ingredientID string) error {
	return a.Items.DeleteIngredient(ctx, a.Slug, a.Auth, a.Meta, ingredientID)
}

func (a *ServiceActions) DeleteAllIngredients(ctx context.Context, itemID string) error {
	return a.Items.DeleteAllIngredients(ctx, a.Slug, a.Auth, a.Meta, itemID)
}

func (a *ServiceActions) GenerateIngredients(ctx context.Context, itemID string, peopleCount int) ([]models.Ingredient, error) {
	return a.Ingredients.Generate(ctx, a.Slug, a.Auth, a.Meta, services.GenerateInput{
		ItemID:      itemID,
		PeopleCount: peopleCount,
	})
}

func (a *ServiceActions) GenerateAllIngredients(ctx context.Context, generateIDs []string) (models.Plan, error) {
	if _, err := a.Ingredients.GenerateAll(ctx, a.Slug, a.Auth, a.Meta, services.GenerateAllInput{
		GenerateIDs: generateIDs,
	}); err != nil {
		return models.Plan{}, err
	}
	plan, _, err := a.Events.FetchPlan(ctx, a.Slug, a.Auth.Key)
	return plan, err
}
