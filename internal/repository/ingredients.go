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

type IngredientRepository interface {
	FindByID(ctx context.Context, id string) (models.Ingredient, error)
	FindByItemID(ctx context.Context, itemID string) ([]models.Ingredient, error)
	Create(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error)
	Update(ctx context.Context, ingredient models.Ingredient) error
	Delete(ctx context.Context, id string) error
	DeleteByItemID(ctx context.Context, itemID string) error
	ReplaceForItem(ctx context.Context, itemID string, ingredients []models.Ingredient) ([]models.Ingredient, error)
}

type SQLiteIngredientRepository struct {
	database *sql.DB
}

func NewIngredientRepository(database *sql.DB) *SQLiteIngredientRepository {
	return &SQLiteIngredientRepository{database: database}
}

const ingredientColumns = `id, item_id, name, quantity, checked, order_index, created_at, updated_at`

func (repository *SQLiteIngredientRepository) FindByID(ctx context.Context, id string) (models.Ingredient, error) {
	var ingredient models.Ingredient
	err := repository.database.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id,
	).Scan(
		&ingredient.ID, &ingredient.ItemID, &ingredient.Name, &ingredient.Quantity,
		&ingredient.Checked, &ingredient.OrderIndex, &ingredient.CreatedAt, &ingredient.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ingredient{}, fmt.Errorf("finding ingredient by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("finding ingredient by id: %w", err)
	}
	return ingredient, nil
}

func (repository *SQLiteIngredientRepository) FindByItemID(ctx context.Context, itemID string) ([]models.Ingredient, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE item_id = ? ORDER BY order_index ASC, created_at ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding ingredients: %w", err)
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

func (repository *SQLiteIngredientRepository) Create(ctx context.Context, ingredient models.Ingredient) (models.Ingredient, error) {
	if ingredient.ID == "" {
		ingredient.ID = uuid.New().String()
	}
	now := time.Now()
	ingredient.CreatedAt = now
	ingredient.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO ingredients (id, item_id, name, quantity, checked, order_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ingredient.ID, ingredient.ItemID, ingredient.Name, ingredient.Quantity,
		ingredient.Checked, ingredient.OrderIndex, ingredient.CreatedAt, ingredient.UpdatedAt,
	)
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("creating ingredient: %w", err)
	}
	return ingredient, nil
}

func (repository *SQLiteIngredientRepository) Update(ctx context.Context, ingredient models.Ingredient) error {
	ingredient.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE ingredients SET name = ?, quantity = ?, checked = ?, order_index = ?, updated_at = ?
		WHERE id = ?`,
		ingredient.Name, ingredient.Quantity, ingredient.Checked, ingredient.OrderIndex,
		ingredient.UpdatedAt, ingredient.ID,
	)
	if err != nil {
		return fmt.Errorf("updating ingredient: %w", err)
	}
	return nil
}

func (repository *SQLiteIngredientRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM ingredients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting ingredient: %w", err)
	}
	return nil
}

func (repository *SQLiteIngredientRepository) DeleteByItemID(ctx context.Context, itemID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM ingredients WHERE item_id = ?", itemID)
	if err != nil {
		return fmt.Errorf("deleting ingredients for item: %w", err)
	}
	return nil
}

// ReplaceForItem swaps the item's whole ingredient set in one transaction.
// Generation replaces, it never merges.
func (repository *SQLiteIngredientRepository) ReplaceForItem(ctx context.Context, itemID string, ingredients []models.Ingredient) ([]models.Ingredient, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM ingredients WHERE item_id = ?", itemID); err != nil {
		return nil, fmt.Errorf("clearing ingredients: %w", err)
	}

	now := time.Now()
	created := make([]models.Ingredient, 0, len(ingredients))
	for index, ingredient := range ingredients {
		ingredient.ID = uuid.New().String()
		ingredient.ItemID = itemID
		ingredient.OrderIndex = index
		ingredient.CreatedAt = now
		ingredient.UpdatedAt = now
		if _, err := transaction.ExecContext(ctx,
			`INSERT INTO ingredients (id, item_id, name, quantity, checked, order_index, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ingredient.ID, ingredient.ItemID, ingredient.Name, ingredient.Quantity,
			ingredient.Checked, ingredient.OrderIndex, ingredient.CreatedAt, ingredient.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("inserting ingredient: %w", err)
		}
		created = append(created, ingredient)
	}

	if err := transaction.Commit(); err != nil {
		return nil, fmt.Errorf("committing replace: %w", err)
	}
	return created, nil
}
