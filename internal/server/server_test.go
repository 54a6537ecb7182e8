package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yogz/colist/internal/config"
	"github.com/yogz/colist/internal/llm"
	"github.com/yogz/colist/internal/server"
	"github.com/yogz/colist/internal/testutil"
)

type stubGenerator struct{}

func (stubGenerator) GenerateIngredients(_ context.Context, _, _ string, _ int) ([]llm.GeneratedIngredient, error) {
	return []llm.GeneratedIngredient{{Name: "Fromage à raclette", Quantity: "1.2 kg"}}, nil
}

func (stubGenerator) Categorize(_ context.Context, _ []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	srv := server.New(db, config.Config{
		SessionSecret: "test-secret",
		Port:          "0",
	}, stubGenerator{})
	return srv.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("decoding response %q: %v", recorder.Body.String(), err)
	}
}

type createdEvent struct {
	Event struct {
		Slug string `json:"slug"`
	} `json:"event"`
	AdminKey string `json:"admin_key"`
}

func createEvent(t *testing.T, router http.Handler, name string) createdEvent {
	t.Helper()

	recorder := doJSON(t, router, http.MethodPost, "/api/events", map[string]string{"name": name})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating event: status %d, body %s", recorder.Code, recorder.Body.String())
	}
	var created createdEvent
	decode(t, recorder, &created)
	return created
}

func TestCreateEventAndFetchPlan(t *testing.T) {
	router := newTestServer(t)

	created := createEvent(t, router, "Réveillon 2025")
	if !strings.HasPrefix(created.Event.Slug, "reveillon-2025-") || created.AdminKey == "" {
		t.Fatalf("created = %+v, want slug and admin key", created)
	}

	// With the key: write enabled.
	recorder := doJSON(t, router, http.MethodGet, "/api/event/"+created.Event.Slug+"/?key="+created.AdminKey, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("plan fetch: status %d", recorder.Code)
	}
	var withKey struct {
		WriteEnabled bool `json:"write_enabled"`
	}
	decode(t, recorder, &withKey)
	if !withKey.WriteEnabled {
		t.Error("write_enabled = false with the admin key")
	}

	// Without the key: readable, read-only.
	recorder = doJSON(t, router, http.MethodGet, "/api/event/"+created.Event.Slug+"/", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("anonymous plan fetch: status %d", recorder.Code)
	}
	var withoutKey struct {
		WriteEnabled bool `json:"write_enabled"`
	}
	decode(t, recorder, &withoutKey)
	if withoutKey.WriteEnabled {
		t.Error("write_enabled = true without the admin key")
	}
}

func TestPlanFetchUnknownSlug(t *testing.T) {
	router := newTestServer(t)

	recorder := doJSON(t, router, http.MethodGet, "/api/event/nope/", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", recorder.Code)
	}
}

// buildTree creates event -> meal -> service through the API and
// returns the slug, key and service id.
func buildTree(t *testing.T, router http.Handler) (slug, key, serviceID string) {
	t.Helper()

	created := createEvent(t, router, "Réveillon")
	slug, key = created.Event.Slug, created.AdminKey

	recorder := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/meals?key=%s", slug, key),
		map[string]interface{}{
			"date":           "2025-12-24",
			"title":          "Dîner",
			"service_titles": []string{"Plat"},
		})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating meal: status %d, body %s", recorder.Code, recorder.Body.String())
	}
	var meal struct {
		Services []struct {
			ID string `json:"id"`
		} `json:"services"`
	}
	decode(t, recorder, &meal)
	if len(meal.Services) != 1 {
		t.Fatalf("meal services = %d, want 1", len(meal.Services))
	}
	return slug, key, meal.Services[0].ID
}

func TestCreateItemRequiresCapability(t *testing.T) {
	router := newTestServer(t)
	slug, _, serviceID := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/services/%s/items", slug, serviceID),
		map[string]string{"name": "Raclette"})
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without key or token", recorder.Code)
	}
}

func TestShoppingEndpointAggregates(t *testing.T) {
	router := newTestServer(t)
	slug, key, serviceID := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/services/%s/items?key=%s", slug, serviceID, key),
		map[string]string{"name": "Raclette"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating item: status %d, body %s", recorder.Code, recorder.Body.String())
	}

	recorder = doJSON(t, router, http.MethodGet, "/api/event/"+slug+"/shopping", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("shopping list: status %d", recorder.Code)
	}
	var response struct {
		Rows []struct {
			Name    string `json:"name"`
			Sources []struct {
				ItemID string `json:"item_id"`
			} `json:"sources"`
		} `json:"rows"`
	}
	decode(t, recorder, &response)
	if len(response.Rows) != 1 || response.Rows[0].Name != "Raclette" || len(response.Rows[0].Sources) != 1 {
		t.Errorf("rows = %+v, want one Raclette row with one source", response.Rows)
	}
}

func TestGenerateIngredientsEndpoint(t *testing.T) {
	router := newTestServer(t)
	slug, key, serviceID := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/services/%s/items?key=%s", slug, serviceID, key),
		map[string]string{"name": "Raclette"})
	var item struct {
		ID string `json:"id"`
	}
	decode(t, recorder, &item)

	recorder = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/items/%s/ingredients/generate?key=%s", slug, item.ID, key),
		map[string]int{"people_count": 6})
	if recorder.Code != http.StatusOK {
		t.Fatalf("generate: status %d, body %s", recorder.Code, recorder.Body.String())
	}
	var ingredients []struct {
		Name string `json:"name"`
	}
	decode(t, recorder, &ingredients)
	if len(ingredients) != 1 || ingredients[0].Name != "Fromage à raclette" {
		t.Errorf("ingredients = %+v", ingredients)
	}
}

func TestCalendarFeed(t *testing.T) {
	router := newTestServer(t)
	slug, _, _ := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodGet, "/api/event/"+slug+"/calendar.ics", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("calendar feed: status %d", recorder.Code)
	}
	if contentType := recorder.Header().Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Errorf("content type = %q", contentType)
	}
	if body := recorder.Body.String(); !strings.Contains(body, "BEGIN:VEVENT") {
		t.Errorf("feed has no VEVENT:\n%s", body)
	}
}

func TestChangeLogRequiresAdminKey(t *testing.T) {
	router := newTestServer(t)
	slug, key, _ := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodGet, "/api/event/"+slug+"/changelog", nil)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without key", recorder.Code)
	}

	recorder = doJSON(t, router, http.MethodGet, "/api/event/"+slug+"/changelog?key="+key, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("changelog: status %d", recorder.Code)
	}
	var response struct {
		Entries []struct {
			Action    string `json:"action"`
			TableName string `json:"table_name"`
		} `json:"entries"`
	}
	decode(t, recorder, &response)
	if len(response.Entries) == 0 {
		t.Error("no audit entries after mutations")
	}
}

func TestGuestTokenBearerAuth(t *testing.T) {
	router := newTestServer(t)
	slug, key, serviceID := buildTree(t, router)

	recorder := doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/event/%s/people?key=%s", slug, key),
		map[string]string{"name": "Cécile"})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("creating person: status %d, body %s", recorder.Code, recorder.Body.String())
	}
	var created struct {
		Person struct {
			ID string `json:"id"`
		} `json:"person"`
		Token string `json:"token"`
	}
	decode(t, recorder, &created)
	if created.Token == "" {
		t.Fatal("no guest token in response")
	}

	// The guest token authorizes item creation via bearer header.
	body, _ := json.Marshal(map[string]string{"name": "Vin rouge"})
	request := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/event/%s/services/%s/items", slug, serviceID),
		bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+created.Token)
	response := httptest.NewRecorder()
	router.ServeHTTP(response, request)
	if response.Code != http.StatusCreated {
		t.Errorf("status = %d with guest token, want 201; body %s", response.Code, response.Body.String())
	}
}
