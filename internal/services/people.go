package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yogz/colist/internal/apperrors"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/sanitize"
)

// ErrPersonAlreadyClaimed is returned when a claim targets a person
// already linked to another user.
var ErrPersonAlreadyClaimed = errors.New("person already claimed")

type PersonService struct {
	eventRepo  repository.EventRepository
	personRepo repository.PersonRepository
	tokenRepo  repository.GuestTokenRepository
	access     *AccessService
	auditor    *Auditor
}

func NewPersonService(
	eventRepo repository.EventRepository,
	personRepo repository.PersonRepository,
	tokenRepo repository.GuestTokenRepository,
	access *AccessService,
	auditor *Auditor,
) *PersonService {
	return &PersonService{
		eventRepo:  eventRepo,
		personRepo: personRepo,
		tokenRepo:  tokenRepo,
		access:     access,
		auditor:    auditor,
	}
}

type PersonInput struct {
	Name  string
	Emoji *string
	Image *string
}

// CreatedPerson pairs a new person with their freshly minted guest
// token. The raw token is returned exactly once; only its hash is stored.
type CreatedPerson struct {
	Person models.Person `json:"person"`
	Token  string        `json:"token"`
}

func (service *PersonService) requireAdminEvent(ctx context.Context, slug string, auth Authorization) (models.Event, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Event{}, apperrors.Classify(err)
	}
	if err := service.access.RequireAdmin(event, auth); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

func (service *PersonService) findInEvent(ctx context.Context, event models.Event, personID string) (models.Person, error) {
	person, err := service.personRepo.FindByID(ctx, personID)
	if err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	if person.EventID != event.ID {
		return models.Person{}, fmt.Errorf("person belongs to another event: %w", apperrors.ErrNotFound)
	}
	return person, nil
}

func (service *PersonService) CreatePerson(ctx context.Context, slug string, auth Authorization, meta RequestMeta, input PersonInput) (CreatedPerson, error) {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return CreatedPerson{}, err
	}

	name := sanitize.Text(input.Name)
	if name == "" {
		return CreatedPerson{}, fmt.Errorf("person name required: %w", apperrors.ErrValidation)
	}

	var emoji *string
	if input.Emoji != nil {
		if cleaned := sanitize.Emoji(*input.Emoji); cleaned != "" {
			emoji = &cleaned
		}
	}

	person, err := service.personRepo.Create(ctx, models.Person{
		EventID: event.ID,
		Name:    name,
		Emoji:   emoji,
		Image:   input.Image,
	})
	if err != nil {
		return CreatedPerson{}, apperrors.Classify(err)
	}

	token, err := service.access.MintToken(ctx, person.ID)
	if err != nil {
		return CreatedPerson{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "create", "people", person.ID, nil, person)
	return CreatedPerson{Person: person, Token: token}, nil
}

func (service *PersonService) UpdatePerson(ctx context.Context, slug string, auth Authorization, meta RequestMeta, personID string, input PersonInput) (models.Person, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	if err := service.access.RequirePersonScope(ctx, event, auth, personID); err != nil {
		return models.Person{}, err
	}

	person, err := service.findInEvent(ctx, event, personID)
	if err != nil {
		return models.Person{}, err
	}

	old := person
	if name := sanitize.Text(input.Name); name != "" {
		person.Name = name
	}
	if input.Emoji != nil {
		if cleaned := sanitize.Emoji(*input.Emoji); cleaned != "" {
			person.Emoji = &cleaned
		} else {
			person.Emoji = nil
		}
	}
	if input.Image != nil {
		person.Image = input.Image
	}

	if err := service.personRepo.Update(ctx, person); err != nil {
		return models.Person{}, apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "update", "people", person.ID, old, person)
	return person, nil
}

// DeletePerson removes a person; their guest token goes with them and
// items they were assigned become unassigned via the schema.
func (service *PersonService) DeletePerson(ctx context.Context, slug string, auth Authorization, meta RequestMeta, personID string) error {
	event, err := service.requireAdminEvent(ctx, slug, auth)
	if err != nil {
		return err
	}

	person, err := service.findInEvent(ctx, event, personID)
	if err != nil {
		return err
	}

	if err := service.tokenRepo.DeleteByPersonID(ctx, personID); err != nil {
		return apperrors.Classify(err)
	}
	if err := service.personRepo.Delete(ctx, personID); err != nil {
		return apperrors.Classify(err)
	}

	service.auditor.Record(ctx, meta, "delete", "people", personID, person, nil)
	return nil
}

// ClaimPerson links a person to a user id and mints a fresh guest token
// for the claimer. Re-claiming with the same user id is allowed and just
// mints another token; a different user id is rejected.
func (service *PersonService) ClaimPerson(ctx context.Context, slug string, auth Authorization, meta RequestMeta, personID, userID string) (CreatedPerson, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return CreatedPerson{}, apperrors.Classify(err)
	}
	if _, err := service.access.RequireGuest(ctx, event, auth); err != nil {
		return CreatedPerson{}, err
	}

	person, err := service.findInEvent(ctx, event, personID)
	if err != nil {
		return CreatedPerson{}, err
	}

	if person.UserID != nil && *person.UserID != userID {
		return CreatedPerson{}, ErrPersonAlreadyClaimed
	}

	if person.UserID == nil {
		old := person
		if err := service.personRepo.SetUserID(ctx, personID, &userID); err != nil {
			return CreatedPerson{}, apperrors.Classify(err)
		}
		person.UserID = &userID
		service.auditor.Record(ctx, meta, "update", "people", personID, old, person)
	}

	token, err := service.access.MintToken(ctx, personID)
	if err != nil {
		return CreatedPerson{}, apperrors.Classify(err)
	}

	return CreatedPerson{Person: person, Token: token}, nil
}

func (service *PersonService) UnclaimPerson(ctx context.Context, slug string, auth Authorization, meta RequestMeta, personID string) (models.Person, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	if err := service.access.RequirePersonScope(ctx, event, auth, personID); err != nil {
		return models.Person{}, err
	}

	person, err := service.findInEvent(ctx, event, personID)
	if err != nil {
		return models.Person{}, err
	}

	old := person
	if err := service.personRepo.SetUserID(ctx, personID, nil); err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	person.UserID = nil

	service.auditor.Record(ctx, meta, "update", "people", personID, old, person)
	return person, nil
}

// UpdateStatus drives the RSVP state machine. A nil status clears the
// response. Guest counts reset to zero when the person newly becomes
// confirmed, and may only be edited while confirmed; for any other status
// they are forced to zero.
func (service *PersonService) UpdateStatus(ctx context.Context, slug string, auth Authorization, meta RequestMeta, personID string, status *models.RSVPStatus, guestAdults, guestChildren int) (models.Person, error) {
	event, err := service.eventRepo.FindBySlug(ctx, slug)
	if err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	if err := service.access.RequirePersonScope(ctx, event, auth, personID); err != nil {
		return models.Person{}, err
	}

	person, err := service.findInEvent(ctx, event, personID)
	if err != nil {
		return models.Person{}, err
	}

	if status != nil && !status.Valid() {
		return models.Person{}, fmt.Errorf("unknown rsvp status %q: %w", *status, apperrors.ErrValidation)
	}
	if guestAdults < 0 || guestChildren < 0 {
		return models.Person{}, fmt.Errorf("guest counts must be non-negative: %w", apperrors.ErrValidation)
	}

	confirming := status != nil && *status == models.RSVPStatusConfirmed
	switch {
	case !confirming:
		guestAdults, guestChildren = 0, 0
	case !person.Confirmed():
		// Entering confirmed starts from a clean slate.
		guestAdults, guestChildren = 0, 0
	}

	old := person
	if err := service.personRepo.SetStatus(ctx, personID, status, guestAdults, guestChildren); err != nil {
		return models.Person{}, apperrors.Classify(err)
	}
	person.Status = status
	person.GuestAdults = guestAdults
	person.GuestChildren = guestChildren

	service.auditor.Record(ctx, meta, "update", "people", personID, old, person)
	return person, nil
}
