package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/services"
)

type AdminHandler struct {
	eventRepo     repository.EventRepository
	changeLogRepo repository.ChangeLogRepository
	access        *services.AccessService
}

func NewAdminHandler(
	eventRepo repository.EventRepository,
	changeLogRepo repository.ChangeLogRepository,
	access *services.AccessService,
) *AdminHandler {
	return &AdminHandler{eventRepo: eventRepo, changeLogRepo: changeLogRepo, access: access}
}

// ChangeLog lists recent audit entries. Admin key only.
func (handler *AdminHandler) ChangeLog(w http.ResponseWriter, r *http.Request) {
	event, err := handler.eventRepo.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := handler.access.RequireAdmin(event, middleware.GetAuth(r.Context())); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := handler.changeLogRepo.FindRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
