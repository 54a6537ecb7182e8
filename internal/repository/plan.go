package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/yogz/colist/internal/models"
)

type PlanRepository interface {
	FetchPlan(ctx context.Context, slug string) (models.Plan, error)
}

// SQLitePlanRepository assembles the whole event tree in four queries, one
// per level, stitched in memory. The tree is what the client holds as its
// single source of truth.
type SQLitePlanRepository struct {
	database *sql.DB
	events   EventRepository
	meals    MealRepository
	people   PersonRepository
}

func NewPlanRepository(database *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{
		database: database,
		events:   NewEventRepository(database),
		meals:    NewMealRepository(database),
		people:   NewPersonRepository(database),
	}
}

func (repository *SQLitePlanRepository) FetchPlan(ctx context.Context, slug string) (models.Plan, error) {
	event, err := repository.events.FindBySlug(ctx, slug)
	if err != nil {
		return models.Plan{}, err
	}

	meals, err := repository.meals.FindByEventID(ctx, event.ID)
	if err != nil {
		return models.Plan{}, err
	}

	services, err := repository.servicesForEvent(ctx, event.ID)
	if err != nil {
		return models.Plan{}, err
	}

	items, err := repository.itemsForEvent(ctx, event.ID)
	if err != nil {
		return models.Plan{}, err
	}

	ingredients, err := repository.ingredientsForEvent(ctx, event.ID)
	if err != nil {
		return models.Plan{}, err
	}

	people, err := repository.people.FindByEventID(ctx, event.ID)
	if err != nil {
		return models.Plan{}, err
	}

	ingredientsByItem := make(map[string][]models.Ingredient)
	for _, ingredient := range ingredients {
		ingredientsByItem[ingredient.ItemID] = append(ingredientsByItem[ingredient.ItemID], ingredient)
	}

	itemsByService := make(map[string][]models.Item)
	for _, item := range items {
		item.Ingredients = ingredientsByItem[item.ID]
		itemsByService[item.ServiceID] = append(itemsByService[item.ServiceID], item)
	}

	servicesByMeal := make(map[string][]models.Service)
	for _, service := range services {
		service.Items = itemsByService[service.ID]
		servicesByMeal[service.MealID] = append(servicesByMeal[service.MealID], service)
	}

	for index := range meals {
		meals[index].Services = servicesByMeal[meals[index].ID]
	}

	return models.Plan{Event: event, Meals: meals, People: people}, nil
}

func (repository *SQLitePlanRepository) servicesForEvent(ctx context.Context, eventID string) ([]models.Service, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT s.id, s.meal_id, s.title, s.description, s.order_index, s.adults, s.children, s.people_count, s.created_at, s.updated_at
		FROM services s
		JOIN meals m ON s.meal_id = m.id
		WHERE m.event_id = ?
		ORDER BY s.order_index ASC, s.created_at ASC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding services for event: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var service models.Service
		if err := rows.Scan(
			&service.ID, &service.MealID, &service.Title, &service.Description, &service.OrderIndex,
			&service.Adults, &service.Children, &service.PeopleCount, &service.CreatedAt, &service.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (repository *SQLitePlanRepository) itemsForEvent(ctx context.Context, eventID string) ([]models.Item, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT i.id, i.service_id, i.name, i.quantity, i.note, i.person_id, i.order_index, i.price, i.checked, i.category, i.created_at, i.updated_at
		FROM items i
		JOIN services s ON i.service_id = s.id
		JOIN meals m ON s.meal_id = m.id
		WHERE m.event_id = ?
		ORDER BY i.order_index ASC, i.created_at ASC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items for event: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *SQLitePlanRepository) ingredientsForEvent(ctx context.Context, eventID string) ([]models.Ingredient, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT g.id, g.item_id, g.name, g.quantity, g.checked, g.order_index, g.created_at, g.updated_at
		FROM ingredients g
		JOIN items i ON g.item_id = i.id
		JOIN services s ON i.service_id = s.id
		JOIN meals m ON s.meal_id = m.id
		WHERE m.event_id = ?
		ORDER BY g.order_index ASC, g.created_at ASC`, eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding ingredients for event: %w", err)
	}
	defer rows.Close()

	var ingredients []models.Ingredient
	for rows.Next() {
		var ingredient models.Ingredient
		if err := rows.Scan(
			&ingredient.ID, &ingredient.ItemID, &ingredient.Name, &ingredient.Quantity,
			&ingredient.Checked, &ingredient.OrderIndex, &ingredient.CreatedAt, &ingredient.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		ingredients = append(ingredients, ingredient)
	}
	return ingredients, rows.Err()
}
