package store

import (
	"sort"

	"github.com/yogz/colist/internal/models"
)

// path locates an entity inside the plan tree by slice positions. Paths
// are only valid until the next mutation; the index is rebuilt after
// every apply.
type path struct {
	meal       int
	service    int
	item       int
	ingredient int
	person     int
}

// clonePlan deep-copies the tree so a snapshot survives later mutations.
func clonePlan(plan models.Plan) models.Plan {
	cloned := plan
	cloned.Meals = make([]models.Meal, len(plan.Meals))
	for m, meal := range plan.Meals {
		clonedMeal := meal
		clonedMeal.Services = make([]models.Service, len(meal.Services))
		for s, service := range meal.Services {
			clonedService := service
			clonedService.Items = make([]models.Item, len(service.Items))
			for i, item := range service.Items {
				clonedItem := item
				clonedItem.Ingredients = append([]models.Ingredient(nil), item.Ingredients...)
				clonedService.Items[i] = clonedItem
			}
			clonedMeal.Services[s] = clonedService
		}
		cloned.Meals[m] = clonedMeal
	}
	cloned.People = append([]models.Person(nil), plan.People...)
	return cloned
}

func buildIndex(plan models.Plan) map[string]path {
	index := make(map[string]path)
	for m := range plan.Meals {
		index[plan.Meals[m].ID] = path{meal: m, service: -1, item: -1, ingredient: -1, person: -1}
		for s := range plan.Meals[m].Services {
			index[plan.Meals[m].Services[s].ID] = path{meal: m, service: s, item: -1, ingredient: -1, person: -1}
			for i := range plan.Meals[m].Services[s].Items {
				index[plan.Meals[m].Services[s].Items[i].ID] = path{meal: m, service: s, item: i, ingredient: -1, person: -1}
				for g := range plan.Meals[m].Services[s].Items[i].Ingredients {
					index[plan.Meals[m].Services[s].Items[i].Ingredients[g].ID] = path{meal: m, service: s, item: i, ingredient: g, person: -1}
				}
			}
		}
	}
	for p := range plan.People {
		index[plan.People[p].ID] = path{meal: -1, service: -1, item: -1, ingredient: -1, person: p}
	}
	return index
}

// sortMeals keeps meals ordered by date ascending. ISO dates compare
// correctly as strings; the sort is stable so same-day meals keep
// insertion order.
func sortMeals(plan *models.Plan) {
	sort.SliceStable(plan.Meals, func(i, j int) bool {
		return plan.Meals[i].Date < plan.Meals[j].Date
	})
}

func insertMeal(plan *models.Plan, meal models.Meal) {
	plan.Meals = append(plan.Meals, meal)
	sortMeals(plan)
}

func removeMeal(plan *models.Plan, mealID string) {
	kept := plan.Meals[:0]
	for _, meal := range plan.Meals {
		if meal.ID != mealID {
			kept = append(kept, meal)
		}
	}
	plan.Meals = kept
}

func insertService(plan *models.Plan, mealPos int, service models.Service) {
	meal := &plan.Meals[mealPos]
	meal.Services = append(meal.Services, service)
	sort.SliceStable(meal.Services, func(i, j int) bool {
		return meal.Services[i].OrderIndex < meal.Services[j].OrderIndex
	})
}

func removeService(plan *models.Plan, location path) {
	meal := &plan.Meals[location.meal]
	meal.Services = append(meal.Services[:location.service], meal.Services[location.service+1:]...)
}

func removeItem(plan *models.Plan, location path) {
	service := &plan.Meals[location.meal].Services[location.service]
	service.Items = append(service.Items[:location.item], service.Items[location.item+1:]...)
}

// spliceItem inserts an item into a service at targetOrder, or appends
// when targetOrder is nil or out of range.
func spliceItem(service *models.Service, item models.Item, targetOrder *int) {
	if targetOrder == nil || *targetOrder < 0 || *targetOrder >= len(service.Items) {
		service.Items = append(service.Items, item)
		return
	}
	position := *targetOrder
	service.Items = append(service.Items, models.Item{})
	copy(service.Items[position+1:], service.Items[position:])
	service.Items[position] = item
}

func removePerson(plan *models.Plan, personID string) {
	kept := plan.People[:0]
	for _, person := range plan.People {
		if person.ID != personID {
			kept = append(kept, person)
		}
	}
	plan.People = kept
	// The schema unassigns a deleted person's items; mirror it locally.
	for m := range plan.Meals {
		for s := range plan.Meals[m].Services {
			for i := range plan.Meals[m].Services[s].Items {
				item := &plan.Meals[m].Services[s].Items[i]
				if item.PersonID != nil && *item.PersonID == personID {
					item.PersonID = nil
				}
			}
		}
	}
}

// replaceByID swaps an optimistic placeholder for the server's
// canonical row once the create round-trip confirms.
func replaceMeal(plan *models.Plan, placeholderID string, canonical models.Meal) {
	for m := range plan.Meals {
		if plan.Meals[m].ID == placeholderID {
			canonical.Services = plan.Meals[m].Services
			plan.Meals[m] = canonical
			sortMeals(plan)
			return
		}
	}
}

func replaceService(plan *models.Plan, placeholderID string, canonical models.Service) {
	for m := range plan.Meals {
		for s := range plan.Meals[m].Services {
			if plan.Meals[m].Services[s].ID == placeholderID {
				canonical.Items = plan.Meals[m].Services[s].Items
				plan.Meals[m].Services[s] = canonical
				return
			}
		}
	}
}

func replaceItem(plan *models.Plan, placeholderID string, canonical models.Item) {
	for m := range plan.Meals {
		for s := range plan.Meals[m].Services {
			for i := range plan.Meals[m].Services[s].Items {
				if plan.Meals[m].Services[s].Items[i].ID == placeholderID {
					canonical.Ingredients = plan.Meals[m].Services[s].Items[i].Ingredients
					plan.Meals[m].Services[s].Items[i] = canonical
					return
				}
			}
		}
	}
}

func replacePerson(plan *models.Plan, placeholderID string, canonical models.Person) {
	for p := range plan.People {
		if plan.People[p].ID == placeholderID {
			plan.People[p] = canonical
			return
		}
	}
}
