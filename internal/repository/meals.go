package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
)

type MealRepository interface {
	FindByID(ctx context.Context, id string) (models.Meal, error)
	FindByEventID(ctx context.Context, eventID string) ([]models.Meal, error)
	Create(ctx context.Context, meal models.Meal) (models.Meal, error)
	Update(ctx context.Context, meal models.Meal) error
	Delete(ctx context.Context, id string) error
}

type SQLiteMealRepository struct {
	database *sql.DB
}

func NewMealRepository(database *sql.DB) *SQLiteMealRepository {
	return &SQLiteMealRepository{database: database}
}

const mealColumns = `id, event_id, date, title, adults, children, time, address, created_at, updated_at`

func (repository *SQLiteMealRepository) FindByID(ctx context.Context, id string) (models.Meal, error) {
	var meal models.Meal
	err := repository.database.QueryRowContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE id = ?`, id,
	).Scan(
		&meal.ID, &meal.EventID, &meal.Date, &meal.Title, &meal.Adults, &meal.Children,
		&meal.Time, &meal.Address, &meal.CreatedAt, &meal.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Meal{}, fmt.Errorf("finding meal by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Meal{}, fmt.Errorf("finding meal by id: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) FindByEventID(ctx context.Context, eventID string) ([]models.Meal, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+mealColumns+` FROM meals WHERE event_id = ? ORDER BY date ASC, created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding meals: %w", err)
	}
	defer rows.Close()

	var meals []models.Meal
	for rows.Next() {
		var meal models.Meal
		if err := rows.Scan(
			&meal.ID, &meal.EventID, &meal.Date, &meal.Title, &meal.Adults, &meal.Children,
			&meal.Time, &meal.Address, &meal.CreatedAt, &meal.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning meal: %w", err)
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

func (repository *SQLiteMealRepository) Create(ctx context.Context, meal models.Meal) (models.Meal, error) {
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}
	now := time.Now()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO meals (id, event_id, date, title, adults, children, time, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID, meal.EventID, meal.Date, meal.Title, meal.Adults, meal.Children,
		meal.Time, meal.Address, meal.CreatedAt, meal.UpdatedAt,
	)
	if err != nil {
		return models.Meal{}, fmt.Errorf("creating meal: %w", err)
	}
	return meal, nil
}

func (repository *SQLiteMealRepository) Update(ctx context.Context, meal models.Meal) error {
	meal.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE meals SET date = ?, title = ?, adults = ?, children = ?, time = ?, address = ?, updated_at = ?
		WHERE id = ?`,
		meal.Date, meal.Title, meal.Adults, meal.Children, meal.Time, meal.Address,
		meal.UpdatedAt, meal.ID,
	)
	if err != nil {
		return fmt.Errorf("updating meal: %w", err)
	}
	return nil
}

func (repository *SQLiteMealRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM meals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting meal: %w", err)
	}
	return nil
}
