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

type ItemRepository interface {
	FindByID(ctx context.Context, id string) (models.Item, error)
	FindByServiceID(ctx context.Context, serviceID string) ([]models.Item, error)
	Create(ctx context.Context, item models.Item) (models.Item, error)
	Update(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, id string, personID *string) error
	Move(ctx context.Context, id string, targetServiceID string, targetOrder *int) error
	SetChecked(ctx context.Context, id string, checked bool) error
	SetCategory(ctx context.Context, id string, category *string) error
	NextOrderIndex(ctx context.Context, serviceID string) (int, error)
}

type SQLiteItemRepository struct {
	database *sql.DB
}

func NewItemRepository(database *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{database: database}
}

const itemColumns = `id, service_id, name, quantity, note, person_id, order_index, price, checked, category, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (models.Item, error) {
	var item models.Item
	err := scanner.Scan(
		&item.ID, &item.ServiceID, &item.Name, &item.Quantity, &item.Note, &item.PersonID,
		&item.OrderIndex, &item.Price, &item.Checked, &item.Category, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (repository *SQLiteItemRepository) FindByID(ctx context.Context, id string) (models.Item, error) {
	item, err := scanItem(repository.database.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, fmt.Errorf("finding item by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("finding item by id: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) FindByServiceID(ctx context.Context, serviceID string) ([]models.Item, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE service_id = ? ORDER BY order_index ASC, created_at ASC`,
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items: %w", err)
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

func (repository *SQLiteItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO items (id, service_id, name, quantity, note, person_id, order_index, price, checked, category, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ServiceID, item.Name, item.Quantity, item.Note, item.PersonID,
		item.OrderIndex, item.Price, item.Checked, item.Category, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) Update(ctx context.Context, item models.Item) error {
	item.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE items SET name = ?, quantity = ?, note = ?, order_index = ?, price = ?, category = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Quantity, item.Note, item.OrderIndex, item.Price, item.Category,
		item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) Assign(ctx context.Context, id string, personID *string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE items SET person_id = ?, updated_at = ? WHERE id = ?",
		personID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("assigning item: %w", err)
	}
	return nil
}

// Move reparents an item under targetServiceID. With a target order, every
// item at or after that position in the target service shifts down one;
// without one the item is appended.
func (repository *SQLiteItemRepository) Move(ctx context.Context, id string, targetServiceID string, targetOrder *int) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning move transaction: %w", err)
	}
	defer transaction.Rollback()

	var order int
	if targetOrder != nil {
		order = *targetOrder
		if _, err := transaction.ExecContext(ctx,
			"UPDATE items SET order_index = order_index + 1 WHERE service_id = ? AND order_index >= ?",
			targetServiceID, order,
		); err != nil {
			return fmt.Errorf("shifting items in target service: %w", err)
		}
	} else {
		var max sql.NullInt64
		if err := transaction.QueryRowContext(ctx,
			"SELECT MAX(order_index) FROM items WHERE service_id = ?", targetServiceID,
		).Scan(&max); err != nil {
			return fmt.Errorf("finding max item order: %w", err)
		}
		if max.Valid {
			order = int(max.Int64) + 1
		}
	}

	if _, err := transaction.ExecContext(ctx,
		"UPDATE items SET service_id = ?, order_index = ?, updated_at = ? WHERE id = ?",
		targetServiceID, order, time.Now(), id,
	); err != nil {
		return fmt.Errorf("moving item: %w", err)
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("committing move: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) SetChecked(ctx context.Context, id string, checked bool) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE items SET checked = ?, updated_at = ? WHERE id = ?",
		checked, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("toggling item checked: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) SetCategory(ctx context.Context, id string, category *string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE items SET category = ?, updated_at = ? WHERE id = ?",
		category, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting item category: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) NextOrderIndex(ctx context.Context, serviceID string) (int, error) {
	var max sql.NullInt64
	err := repository.database.QueryRowContext(ctx,
		"SELECT MAX(order_index) FROM items WHERE service_id = ?", serviceID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("finding max item order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}
