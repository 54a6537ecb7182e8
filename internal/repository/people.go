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

type PersonRepository interface {
	FindByID(ctx context.Context, id string) (models.Person, error)
	FindByEventID(ctx context.Context, eventID string) ([]models.Person, error)
	Create(ctx context.Context, person models.Person) (models.Person, error)
	Update(ctx context.Context, person models.Person) error
	Delete(ctx context.Context, id string) error
	SetUserID(ctx context.Context, id string, userID *string) error
	SetStatus(ctx context.Context, id string, status *models.RSVPStatus, guestAdults, guestChildren int) error
}

type SQLitePersonRepository struct {
	database *sql.DB
}

func NewPersonRepository(database *sql.DB) *SQLitePersonRepository {
	return &SQLitePersonRepository{database: database}
}

const personColumns = `id, event_id, name, emoji, image, user_id, status, guest_adults, guest_children, created_at, updated_at`

func scanPerson(scanner interface{ Scan(...any) error }) (models.Person, error) {
	var person models.Person
	var status sql.NullString
	err := scanner.Scan(
		&person.ID, &person.EventID, &person.Name, &person.Emoji, &person.Image,
		&person.UserID, &status, &person.GuestAdults, &person.GuestChildren,
		&person.CreatedAt, &person.UpdatedAt,
	)
	if status.Valid {
		s := models.RSVPStatus(status.String)
		person.Status = &s
	}
	return person, err
}

func (repository *SQLitePersonRepository) FindByID(ctx context.Context, id string) (models.Person, error) {
	person, err := scanPerson(repository.database.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Person{}, fmt.Errorf("finding person by id: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return models.Person{}, fmt.Errorf("finding person by id: %w", err)
	}
	return person, nil
}

func (repository *SQLitePersonRepository) FindByEventID(ctx context.Context, eventID string) ([]models.Person, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE event_id = ? ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, person)
	}
	return people, rows.Err()
}

func (repository *SQLitePersonRepository) Create(ctx context.Context, person models.Person) (models.Person, error) {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	now := time.Now()
	person.CreatedAt = now
	person.UpdatedAt = now

	var status *string
	if person.Status != nil {
		s := string(*person.Status)
		status = &s
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO people (id, event_id, name, emoji, image, user_id, status, guest_adults, guest_children, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person.ID, person.EventID, person.Name, person.Emoji, person.Image,
		person.UserID, status, person.GuestAdults, person.GuestChildren,
		person.CreatedAt, person.UpdatedAt,
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("creating person: %w", err)
	}
	return person, nil
}

func (repository *SQLitePersonRepository) Update(ctx context.Context, person models.Person) error {
	person.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE people SET name = ?, emoji = ?, image = ?, updated_at = ? WHERE id = ?`,
		person.Name, person.Emoji, person.Image, person.UpdatedAt, person.ID,
	)
	if err != nil {
		return fmt.Errorf("updating person: %w", err)
	}
	return nil
}

func (repository *SQLitePersonRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	return nil
}

func (repository *SQLitePersonRepository) SetUserID(ctx context.Context, id string, userID *string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE people SET user_id = ?, updated_at = ? WHERE id = ?",
		userID, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting person user: %w", err)
	}
	return nil
}

func (repository *SQLitePersonRepository) SetStatus(ctx context.Context, id string, status *models.RSVPStatus, guestAdults, guestChildren int) error {
	var value *string
	if status != nil {
		s := string(*status)
		value = &s
	}
	_, err := repository.database.ExecContext(ctx,
		"UPDATE people SET status = ?, guest_adults = ?, guest_children = ?, updated_at = ? WHERE id = ?",
		value, guestAdults, guestChildren, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting person status: %w", err)
	}
	return nil
}
