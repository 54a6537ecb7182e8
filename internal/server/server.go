package server

import (
	"crypto/sha256"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yogz/colist/internal/config"
	"github.com/yogz/colist/internal/handlers"
	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/services"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, generator llm.Generator) *Server {
	eventRepo := repository.NewEventRepository(database)
	mealRepo := repository.NewMealRepository(database)
	serviceRepo := repository.NewServiceRepository(database)
	itemRepo := repository.NewItemRepository(database)
	ingredientRepo := repository.NewIngredientRepository(database)
	personRepo := repository.NewPersonRepository(database)
	tokenRepo := repository.NewGuestTokenRepository(database)
	changeLogRepo := repository.NewChangeLogRepository(database)
	feedbackRepo := repository.NewAIFeedbackRepository(database)
	planRepo := repository.NewPlanRepository(database)

	access := services.NewAccessService(tokenRepo, personRepo)
	auditor := services.NewAuditor(changeLogRepo)
	eventService := services.NewEventService(eventRepo, planRepo, access, auditor)
	mealService := services.NewMealService(eventRepo, mealRepo, serviceRepo, access, auditor)
	itemService := services.NewItemService(eventRepo, serviceRepo, mealRepo, itemRepo, ingredientRepo, access, auditor)
	personService := services.NewPersonService(eventRepo, personRepo, tokenRepo, access, auditor)
	ingredientService := services.NewIngredientService(
		eventRepo, mealRepo, serviceRepo, itemRepo, ingredientRepo,
		personRepo, feedbackRepo, generator, access, auditor,
	)

	// Derive distinct cookie keys from the one configured secret.
	hashKey := sha256.Sum256([]byte(cfg.SessionSecret + ":hash"))
	blockKey := sha256.Sum256([]byte(cfg.SessionSecret + ":block"))
	sessions := middleware.NewSessionCodec(hashKey[:], blockKey[:])

	eventHandler := handlers.NewEventHandler(eventService, sessions)
	mealHandler := handlers.NewMealHandler(mealService)
	itemHandler := handlers.NewItemHandler(itemService, ingredientService)
	personHandler := handlers.NewPersonHandler(personService)
	shoppingHandler := handlers.NewShoppingHandler(eventService, itemService)
	calendarHandler := handlers.NewCalendarHandler(eventService)
	adminHandler := handlers.NewAdminHandler(eventRepo, changeLogRepo, access)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/api/events", eventHandler.Create)

	router.Route("/api/event/{slug}", func(r chi.Router) {
		r.Use(middleware.ExtractAuth(sessions, func(r *http.Request) string {
			return chi.URLParam(r, "slug")
		}))

		r.Get("/", eventHandler.Plan)
		r.Put("/", eventHandler.UpdateSettings)
		r.Get("/shopping", shoppingHandler.List)
		r.Put("/shopping", shoppingHandler.Update)
		r.Get("/calendar.ics", calendarHandler.Feed)
		r.Get("/changelog", adminHandler.ChangeLog)

		r.Post("/meals", mealHandler.Create)
		r.Put("/meals/{mealID}", mealHandler.Update)
		r.Delete("/meals/{mealID}", mealHandler.Delete)
		r.Post("/meals/{mealID}/services", mealHandler.CreateService)
		r.Put("/services/{serviceID}", mealHandler.UpdateService)
		r.Delete("/services/{serviceID}", mealHandler.DeleteService)

		r.Post("/services/{serviceID}/items", itemHandler.Create)
		r.Put("/items/{itemID}", itemHandler.Update)
		r.Delete("/items/{itemID}", itemHandler.Delete)
		r.Put("/items/{itemID}/assign", itemHandler.Assign)
		r.Put("/items/{itemID}/move", itemHandler.Move)
		r.Put("/items/{itemID}/checked", itemHandler.SetChecked)

		r.Post("/items/{itemID}/ingredients", itemHandler.AddIngredient)
		r.Delete("/items/{itemID}/ingredients", itemHandler.DeleteAllIngredients)
		r.Post("/items/{itemID}/ingredients/generate", itemHandler.GenerateIngredients)
		r.Put("/ingredients/{ingredientID}", itemHandler.UpdateIngredient)
		r.Delete("/ingredients/{ingredientID}", itemHandler.DeleteIngredient)
		r.Put("/ingredients/{ingredientID}/checked", itemHandler.SetIngredientChecked)

		r.Post("/ingredients/generate-all", itemHandler.GenerateAll)
		r.Post("/ai-feedback", itemHandler.SaveFeedback)

		r.Post("/people", personHandler.Create)
		r.Put("/people/{personID}", personHandler.Update)
		r.Delete("/people/{personID}", personHandler.Delete)
		r.Post("/people/{personID}/claim", personHandler.Claim)
		r.Post("/people/{personID}/unclaim", personHandler.Unclaim)
		r.Put("/people/{personID}/status", personHandler.UpdateStatus)
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Router() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
