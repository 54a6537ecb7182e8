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

type EventRepository interface {
	FindByID(ctx context.Context, id string) (models.Event, error)
	FindBySlug(ctx context.Context, slug string) (models.Event, error)
	Create(ctx context.Context, event models.Event) (models.Event, error)
	Update(ctx context.Context, event models.Event) error
	Delete(ctx context.Context, id string) error
}

type SQLiteEventRepository struct {
	database *sql.DB
}

func NewEventRepository(database *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{database: database}
}

const eventColumns = `id, slug, name, description, admin_key, adults, children, created_at, updated_at`

func scanEvent(row *sql.Row) (models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID, &event.Slug, &event.Name, &event.Description, &event.AdminKey,
		&event.Adults, &event.Children, &event.CreatedAt, &event.UpdatedAt,
	)
	return event, err
}

func (repository *SQLiteEventRepository) FindByID(ctx context.Context, id string) (models.Event, error) {
	event, err := scanEvent(repository.database.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("finding event by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("finding event by id: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) FindBySlug(ctx context.Context, slug string) (models.Event, error) {
	event, err := scanEvent(repository.database.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = ?`, slug,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("finding event by slug: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("finding event by slug: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) Create(ctx context.Context, event models.Event) (models.Event, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO events (id, slug, name, description, admin_key, adults, children, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Slug, event.Name, event.Description, event.AdminKey,
		event.Adults, event.Children, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("creating event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteEventRepository) Update(ctx context.Context, event models.Event) error {
	event.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE events SET name = ?, description = ?, adults = ?, children = ?, updated_at = ?
		WHERE id = ?`,
		event.Name, event.Description, event.Adults, event.Children, event.UpdatedAt, event.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	return nil
}

func (repository *SQLiteEventRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}
