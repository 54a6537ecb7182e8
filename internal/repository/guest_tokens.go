package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
)

type GuestTokenRepository interface {
	Create(ctx context.Context, token models.GuestToken) (models.GuestToken, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (models.GuestToken, error)
	DeleteByPersonID(ctx context.Context, personID string) error
}

type SQLiteGuestTokenRepository struct {
	database *sql.DB
}

func NewGuestTokenRepository(database *sql.DB) *SQLiteGuestTokenRepository {
	return &SQLiteGuestTokenRepository{database: database}
}

// HashToken is how guest tokens are stored; only the caller ever sees the
// raw value.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (repository *SQLiteGuestTokenRepository) Create(ctx context.Context, token models.GuestToken) (models.GuestToken, error) {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO guest_tokens (id, person_id, token_hash, created_at) VALUES (?, ?, ?, ?)`,
		token.ID, token.PersonID, token.TokenHash, token.CreatedAt,
	)
	if err != nil {
		return models.GuestToken{}, fmt.Errorf("creating guest token: %w", err)
	}
	return token, nil
}

func (repository *SQLiteGuestTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (models.GuestToken, error) {
	var token models.GuestToken
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, person_id, token_hash, created_at FROM guest_tokens WHERE token_hash = ?`,
		tokenHash,
	).Scan(&token.ID, &token.PersonID, &token.TokenHash, &token.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GuestToken{}, fmt.Errorf("finding guest token: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.GuestToken{}, fmt.Errorf("finding guest token: %w", err)
	}
	return token, nil
}

func (repository *SQLiteGuestTokenRepository) DeleteByPersonID(ctx context.Context, personID string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM guest_tokens WHERE person_id = ?", personID)
	if err != nil {
		return fmt.Errorf("deleting guest tokens: %w", err)
	}
	return nil
}
