package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/services"
	"github.com/yogz/colist/internal/shopping"
)

type ShoppingHandler struct {
	events *services.EventService
	items  *services.ItemService
}

func NewShoppingHandler(events *services.EventService, items *services.ItemService) *ShoppingHandler {
	return &ShoppingHandler{events: events, items: items}
}

// List returns the aggregated shopping list. `?person=` narrows the
// rows to one person's assignments; `?sort=category` orders by aisle.
func (handler *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	auth := middleware.GetAuth(r.Context())

	plan, _, err := handler.events.FetchPlan(r.Context(), slug, auth.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	rows := shopping.Aggregate(plan)
	rows = shopping.FilterByPerson(rows, r.URL.Query().Get("person"))
	if r.URL.Query().Get("sort") == "category" {
		rows = shopping.SortByCategory(rows)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

type shoppingUpdateRequest struct {
	Row      shopping.Row `json:"row"`
	Name     *string      `json:"name"`
	Quantity *string      `json:"quantity"`
	Checked  *bool        `json:"checked"`
}

// fanOutUpdater binds the item service to one request's slug and
// capabilities so shopping.FanOutUpdate can drive it.
type fanOutUpdater struct {
	items *services.ItemService
	slug  string
	auth  services.Authorization
	meta  services.RequestMeta
}

func (updater fanOutUpdater) UpdateShoppingItem(ctx context.Context, itemID string, update shopping.ItemUpdate) error {
	return updater.items.ApplyShoppingUpdate(ctx, updater.slug, updater.auth, updater.meta, itemID, update)
}

// Update edits an aggregated row: the change fans out to every source
// item. A failed source stops the fan-out and surfaces the error.
func (handler *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request shoppingUpdateRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	updater := fanOutUpdater{
		items: handler.items,
		slug:  chi.URLParam(r, "slug"),
		auth:  middleware.GetAuth(r.Context()),
		meta:  middleware.RequestMeta(r),
	}
	update := shopping.ItemUpdate{
		Name:     request.Name,
		Quantity: request.Quantity,
		Checked:  request.Checked,
	}
	if err := shopping.FanOutUpdate(r.Context(), updater, request.Row, update); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
