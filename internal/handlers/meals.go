package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/services"
)

type MealHandler struct {
	meals *services.MealService
}

func NewMealHandler(meals *services.MealService) *MealHandler {
	return &MealHandler{meals: meals}
}

type mealRequest struct {
	Date          string   `json:"date"`
	Title         string   `json:"title"`
	Adults        int      `json:"adults"`
	Children      int      `json:"children"`
	Time          *string  `json:"time"`
	Address       *string  `json:"address"`
	ServiceTitles []string `json:"service_titles"`
}

func (request mealRequest) input() services.MealInput {
	return services.MealInput{
		Date:     request.Date,
		Title:    request.Title,
		Adults:   request.Adults,
		Children: request.Children,
		Time:     request.Time,
		Address:  request.Address,
	}
}

// Create adds a meal; when service_titles is present the default
// services are created in the same call.
func (handler *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var request mealRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	slug := chi.URLParam(r, "slug")
	auth := middleware.GetAuth(r.Context())
	meta := middleware.RequestMeta(r)

	if len(request.ServiceTitles) > 0 {
		meal, err := handler.meals.CreateMealWithServices(r.Context(), slug, auth, meta, request.input(), request.ServiceTitles)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, meal)
		return
	}

	meal, err := handler.meals.CreateMeal(r.Context(), slug, auth, meta, request.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

func (handler *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	var request mealRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	meal, err := handler.meals.UpdateMeal(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "mealID"),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meal)
}

func (handler *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := handler.meals.DeleteMeal(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "mealID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type serviceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	PeopleCount int    `json:"people_count"`
}

func (request serviceRequest) input() services.ServiceInput {
	return services.ServiceInput{
		Title:       request.Title,
		Description: request.Description,
		Adults:      request.Adults,
		Children:    request.Children,
		PeopleCount: request.PeopleCount,
	}
}

func (handler *MealHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var request serviceRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	created, err := handler.meals.CreateService(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "mealID"),
		request.input(),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *MealHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var request serviceRequest
	if err := decodeBody(r, &request); err != nil {
		writeError(w, err)
		return
	}

	updated, err := handler.meals.UpdateService(
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
	writeJSON(w, http.StatusOK, updated)
}

func (handler *MealHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	err := handler.meals.DeleteService(
		r.Context(),
		chi.URLParam(r, "slug"),
		middleware.GetAuth(r.Context()),
		middleware.RequestMeta(r),
		chi.URLParam(r, "serviceID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
