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

type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (models.Service, error)
	FindByMealID(ctx context.Context, mealID string) ([]models.Service, error)
	Create(ctx context.Context, service models.Service) (models.Service, error)
	Update(ctx context.Context, service models.Service) error
	Delete(ctx context.Context, id string) error
	NextOrderIndex(ctx context.Context, mealID string) (int, error)
}

type SQLiteServiceRepository struct {
	database *sql.DB
}

func NewServiceRepository(database *sql.DB) *SQLiteServiceRepository {
	return &SQLiteServiceRepository{database: database}
}

const serviceColumns = `id, meal_id, title, description, order_index, adults, children, people_count, created_at, updated_at`

func (repository *SQLiteServiceRepository) FindByID(ctx context.Context, id string) (models.Service, error) {
	var service models.Service
	err := repository.database.QueryRowContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = ?`, id,
	).Scan(
		&service.ID, &service.MealID, &service.Title, &service.Description, &service.OrderIndex,
		&service.Adults, &service.Children, &service.PeopleCount, &service.CreatedAt, &service.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Service{}, fmt.Errorf("finding service by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Service{}, fmt.Errorf("finding service by id: %w", err)
	}
	return service, nil
}

func (repository *SQLiteServiceRepository) FindByMealID(ctx context.Context, mealID string) ([]models.Service, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE meal_id = ? ORDER BY order_index ASC, created_at ASC`,
		mealID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding services: %w", err)
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

func (repository *SQLiteServiceRepository) Create(ctx context.Context, service models.Service) (models.Service, error) {
	if service.ID == "" {
		service.ID = uuid.New().String()
	}
	now := time.Now()
	service.CreatedAt = now
	service.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO services (id, meal_id, title, description, order_index, adults, children, people_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		service.ID, service.MealID, service.Title, service.Description, service.OrderIndex,
		service.Adults, service.Children, service.PeopleCount, service.CreatedAt, service.UpdatedAt,
	)
	if err != nil {
		return models.Service{}, fmt.Errorf("creating service: %w", err)
	}
	return service, nil
}

func (repository *SQLiteServiceRepository) Update(ctx context.Context, service models.Service) error {
	service.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE services SET title = ?, description = ?, order_index = ?, adults = ?, children = ?, people_count = ?, updated_at = ?
		WHERE id = ?`,
		service.Title, service.Description, service.OrderIndex, service.Adults,
		service.Children, service.PeopleCount, service.UpdatedAt, service.ID,
	)
	if err != nil {
		return fmt.Errorf("updating service: %w", err)
	}
	return nil
}

func (repository *SQLiteServiceRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM services WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return nil
}

func (repository *SQLiteServiceRepository) NextOrderIndex(ctx context.Context, mealID string) (int, error) {
	var max sql.NullInt64
	err := repository.database.QueryRowContext(ctx,
		"SELECT MAX(order_index) FROM services WHERE meal_id = ?", mealID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("finding max service order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}
