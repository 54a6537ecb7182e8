package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/services"
)

type EventHandler struct {
	events   *services.EventService
	sessions *middleware.SessionCodec
}

func NewEventHandler(events *services.EventService, sessions *middleware.SessionCodec) *EventHandler {
	return &EventHandler{events: events, sessions: sessions}
}

type createEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Adults      *int   `json:"adults"`
	Children    *int   `json:"children"`
}

// Create mints a new event. The response is the only place the admin
// key ever appears.
func (handler *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request createEventRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	event, err := handler.events.CreateEvent(r.Context(), middleware.RequestMeta(r), services.CreateEventInput{
		Name:        request.Name,
		Description: request.Description,
		Adults:      request.Adults,
		Children:    request.Children,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"event":     event,
		"admin_key": event.AdminKey,
	})
}

// Plan returns the full tree plus the writeEnabled flag. Presenting a
// valid key also sets the signed session cookie so subsequent requests
// from the same browser stay write-enabled.
func (handler *EventHandler) Plan(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	auth := middleware.GetAuth(r.Context())

	plan, writeEnabled, err := handler.events.FetchPlan(r.Context(), slug, auth.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	if writeEnabled && handler.sessions != nil {
		if err := handler.sessions.SetSession(w, slug, auth.Key); err != nil {
			slog.Warn("setting session cookie", "slug", slug, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":          plan,
		"write_enabled": writeEnabled,
	})
}

type updateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Adults      *int   `json:"adults"`
	Children    *int   `json:"children"`
}

func (handler *EventHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var request updateEventRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	event, err := handler.events.UpdateSettings(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		services.UpdateEventInput{
			Name:        request.Name,
			Description: request.Description,
			Adults:      request.Adults,
			Children:    request.Children,
		},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
