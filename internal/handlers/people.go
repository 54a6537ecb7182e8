package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/services"
)

type PersonHandler struct {
	people *services.PersonService
}

func NewPersonHandler(people *services.PersonService) *PersonHandler {
	return &PersonHandler{people: people}
}

type personRequest struct {
	Name  string  `json:"name"`
	Emoji *string `json:"emoji"`
	Image *string `json:"image"`
}

func (request personRequest) input() services.PersonInput {
	return services.PersonInput{
		Name:  request.Name,
		Emoji: request.Emoji,
		Image: request.Image,
	}
}

// Create returns the person together with the raw guest token; the
// token is never retrievable again.
func (handler *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request personRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	created, err := handler.people.CreatePerson(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request personRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	person, err := handler.people.UpdatePerson(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "personID"),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (handler *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := handler.people.DeletePerson(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "personID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type claimRequest struct {
	UserID string `json:"user_id"`
}

func (handler *PersonHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var request claimRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	claimed, err := handler.people.ClaimPerson(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "personID"),
		request.UserID,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimed)
}

func (handler *PersonHandler) Unclaim(w http.ResponseWriter, r *http.Request) {
	person, err := handler.people.UnclaimPerson(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "personID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

type statusRequest struct {
	Status        *models.RSVPStatus `json:"status"`
	GuestAdults   int                `json:"guest_adults"`
	GuestChildren int                `json:"guest_children"`
}

func (handler *PersonHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var request statusRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	person, err := handler.people.UpdateStatus(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "personID"),
		request.Status,
		request.GuestAdults,
		request.GuestChildren,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}
