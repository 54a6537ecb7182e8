package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
)

// Authorization carries the capabilities a caller presented: the event
// admin key and/or a per-person guest token. Every action re-validates
// these server-side regardless of any client-side guard.
type Authorization struct {
	Key   string
	Token string
}

type AccessService struct {
	tokenRepo  repository.GuestTokenRepository
	personRepo repository.PersonRepository
}

func NewAccessService(tokenRepo repository.GuestTokenRepository, personRepo repository.PersonRepository) *AccessService {
	return &AccessService{tokenRepo: tokenRepo, personRepo: personRepo}
}

// WriteEnabled reports whether the presented key is the event's admin key.
func (service *AccessService) WriteEnabled(event models.Event, key string) bool {
	return key != "" && event.AdminKey != "" && key == event.AdminKey
}

// RequireAdmin authorizes event-wide mutations.
func (service *AccessService) RequireAdmin(event models.Event, auth Authorization) error {
	if !service.WriteEnabled(event, auth.Key) {
		return fmt.Errorf("admin key required: %w", apperrors.ErrUnauthorized)
	}
	return nil
}

// ResolveToken returns the person a guest token belongs to.
func (service *AccessService) ResolveToken(ctx context.Context, token string) (models.Person, error) {
	if token == "" {
		return models.Person{}, fmt.Errorf("guest token required: %w", apperrors.ErrUnauthorized)
	}
	stored, err := service.tokenRepo.FindByTokenHash(ctx, repository.HashToken(token))
	if err != nil {
		return models.Person{}, fmt.Errorf("guest token rejected: %w", apperrors.ErrUnauthorized)
	}
	person, err := service.personRepo.FindByID(ctx, stored.PersonID)
	if err != nil {
		return models.Person{}, fmt.Errorf("guest token person missing: %w", apperrors.ErrUnauthorized)
	}
	return person, nil
}

// RequirePersonScope authorizes person-scoped mutations: the admin key, or
// a guest token belonging to that exact person.
func (service *AccessService) RequirePersonScope(ctx context.Context, event models.Event, auth Authorization, personID string) error {
	if service.WriteEnabled(event, auth.Key) {
		return nil
	}
	person, err := service.ResolveToken(ctx, auth.Token)
	if err != nil {
		return err
	}
	if person.ID != personID || person.EventID != event.ID {
		return fmt.Errorf("token does not cover this person: %w", apperrors.ErrUnauthorized)
	}
	return nil
}

// RequireGuest authorizes event-scoped guest interactions (ingredient
// checking, self-assignment): the admin key, or any guest token minted for
// a person of this event. It returns the acting person when a token was
// used, nil for the admin.
func (service *AccessService) RequireGuest(ctx context.Context, event models.Event, auth Authorization) (*models.Person, error) {
	if service.WriteEnabled(event, auth.Key) {
		return nil, nil
	}
	person, err := service.ResolveToken(ctx, auth.Token)
	if err != nil {
		return nil, err
	}
	if person.EventID != event.ID {
		return nil, fmt.Errorf("token belongs to another event: %w", apperrors.ErrUnauthorized)
	}
	return &person, nil
}

// MintToken creates a new guest token for the person and returns the raw
// value; only its hash is stored.
func (service *AccessService) MintToken(ctx context.Context, personID string) (string, error) {
	raw := generateKey()
	_, err := service.tokenRepo.Create(ctx, models.GuestToken{
		PersonID:  personID,
		TokenHash: repository.HashToken(raw),
	})
	if err != nil {
		return "", fmt.Errorf("minting guest token: %w", err)
	}
	return raw, nil
}

func generateKey() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
