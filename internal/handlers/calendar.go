package handlers

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/go-chi/chi/v5"

	"github.com/yogz/colist/internal/middleware"
	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/services"
)

type CalendarHandler struct {
	events *services.EventService
}

func NewCalendarHandler(events *services.EventService) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// Feed serves the event's meals as an iCalendar feed, one VEVENT per
// meal, so guests can subscribe from their calendar app.
func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	auth := middleware.GetAuth(r.Context())

	plan, _, err := handler.events.FetchPlan(r.Context(), slug, auth.Key)
	if err != nil {
		writeError(w, err)
		return
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetXWRCalName(plan.Event.Name)

	for _, meal := range plan.Meals {
		entry := calendar.AddEvent(fmt.Sprintf("meal-%s@%s", meal.ID, slug))
		entry.SetSummary(mealSummary(plan.Event, meal))
		if meal.Address != nil {
			entry.SetLocation(*meal.Address)
		}

		start, allDay := mealStart(meal)
		if allDay {
			entry.SetAllDayStartAt(start)
			entry.SetAllDayEndAt(start.AddDate(0, 0, 1))
		} else {
			entry.SetStartAt(start)
			entry.SetEndAt(start.Add(2 * time.Hour))
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slug+".ics"))
	w.Write([]byte(calendar.Serialize()))
}

func mealSummary(event models.Event, meal models.Meal) string {
	if meal.Title != "" {
		return fmt.Sprintf("%s: %s", event.Name, meal.Title)
	}
	return event.Name
}

// mealStart parses the meal's date and optional HH:MM time. Meals
// without a time become all-day entries.
func mealStart(meal models.Meal) (time.Time, bool) {
	day, err := time.Parse("2006-01-02", meal.Date)
	if err != nil {
		return time.Time{}, true
	}
	if meal.Time == nil {
		return day, true
	}
	clock, err := time.Parse("15:04", *meal.Time)
	if err != nil {
		return day, true
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), false
}
