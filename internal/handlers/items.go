package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/services"
)

type ItemHandler struct {
	items       *services.ItemService
	ingredients *services.IngredientService
}

func NewItemHandler(items *services.ItemService, ingredients *services.IngredientService) *ItemHandler {
	return &ItemHandler{items: items, ingredients: ingredients}
}

type itemRequest struct {
	Name     string   `json:"name"`
	Quantity *string  `json:"quantity"`
	Note     string   `json:"note"`
	PersonID *string  `json:"person_id"`
	Price    *float64 `json:"price"`
}

func (request itemRequest) input() services.ItemInput {
	return services.ItemInput{
		Name:     request.Name,
		Quantity: request.Quantity,
		Note:     request.Note,
		PersonID: request.PersonID,
		Price:    request.Price,
	}
}

func (handler *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request itemRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	item, err := handler.items.CreateItem(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "serviceID"),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (handler *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request itemRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	item, err := handler.items.UpdateItem(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (handler *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := handler.items.DeleteItem(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	PersonID *string `json:"person_id"`
}

func (handler *ItemHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var request assignRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	item, err := handler.items.AssignItem(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
		request.PersonID,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type moveRequest struct {
	TargetServiceID string `json:"target_service_id"`
	TargetOrder     *int   `json:"target_order"`
}

func (handler *ItemHandler) Move(w http.ResponseWriter, r *http.Request) {
	var request moveRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	item, err := handler.items.MoveItem(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
		request.TargetServiceID,
		request.TargetOrder,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type checkedRequest struct {
	Checked bool `json:"checked"`
}

func (handler *ItemHandler) SetChecked(w http.ResponseWriter, r *http.Request) {
	var request checkedRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	err := handler.items.ToggleChecked(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
		request.Checked,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ingredientRequest struct {
	Name     string  `json:"name"`
	Quantity *string `json:"quantity"`
}

func (handler *ItemHandler) AddIngredient(w http.ResponseWriter, r *http.Request) {
	var request ingredientRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	ingredient, err := handler.items.AddIngredient(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
		services.IngredientInput{Name: request.Name, Quantity: request.Quantity},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ingredient)
}

func (handler *ItemHandler) UpdateIngredient(w http.ResponseWriter, r *http.Request) {
	var request ingredientRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	ingredient, err := handler.items.UpdateIngredient(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "ingredientID"),
		services.IngredientInput{Name: request.Name, Quantity: request.Quantity},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredient)
}

func (handler *ItemHandler) DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	err := handler.items.DeleteIngredient(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "ingredientID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *ItemHandler) DeleteAllIngredients(w http.ResponseWriter, r *http.Request) {
	err := handler.items.DeleteAllIngredients(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "itemID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *ItemHandler) SetIngredientChecked(w http.ResponseWriter, r *http.Request) {
	var request checkedRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	err := handler.items.SetIngredientChecked(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		chi.URLParam(r, "ingredientID"),
		request.Checked,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	PeopleCount int `json:"people_count"`
}

func (handler *ItemHandler) GenerateIngredients(w http.ResponseWriter, r *http.Request) {
	var request generateRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	ingredients, err := handler.ingredients.Generate(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		services.GenerateInput{
			ItemID:      chi.URLParam(r, "itemID"),
			PeopleCount: request.PeopleCount,
		},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingredients)
}

type generateAllRequest struct {
	GenerateIDs []string `json:"generate_ids"`
}

func (handler *ItemHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	var request generateAllRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	result, err := handler.ingredients.GenerateAll(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		services.GenerateAllInput{GenerateIDs: request.GenerateIDs},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type feedbackRequest struct {
	ItemName string `json:"item_name"`
	Feedback string `json:"feedback"`
	Comment  string `json:"comment"`
}

func (handler *ItemHandler) SaveFeedback(w http.ResponseWriter, r *http.Request) {
	var request feedbackRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	saved, err := handler.ingredients.SaveFeedback(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		services.FeedbackInput{
			ItemName: request.ItemName,
			Feedback: request.Feedback,
			Comment:  request.Comment,
		},
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
