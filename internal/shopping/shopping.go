// Package shopping flattens a plan tree into a de-duplicated shopping
// list. The aggregation is pure: the same plan always yields the same
// rows, so callers may re-run it after every state change.
package shopping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yogz/colist/internal/models"
)

// Source is one {meal, service, item} triple that contributed to an
// aggregated row. Edits to the row fan out to every source item.
type Source struct {
	MealID       string  `json:"meal_id"`
	MealDate     string  `json:"meal_date"`
	MealTitle    string  `json:"meal_title,omitempty"`
	ServiceID    string  `json:"service_id"`
	ServiceTitle string  `json:"service_title"`
	ItemID       string  `json:"item_id"`
	Quantity     *string `json:"quantity,omitempty"`
	PersonID     *string `json:"person_id,omitempty"`
	Checked      bool    `json:"checked"`
}

// Row is one aggregated shopping entry. Checked is derived: true only
// when every source item is checked.
type Row struct {
	Name     string   `json:"name"`
	Category *string  `json:"category,omitempty"`
	Sources  []Source `json:"sources"`
	Checked  bool     `json:"checked"`
}

// normalizedKey merges case and whitespace variants of an item name,
// scoped by category once categorization has run.
func normalizedKey(name string, category *string) string {
	key := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if category != nil && *category != "" {
		key += "\x00" + strings.ToLower(*category)
	}
	return key
}

// Aggregate walks every meal, service and item of the plan and groups
// items by normalized name. Row order follows first appearance in the
// tree, which is stable for an unchanged plan.
func Aggregate(plan models.Plan) []Row {
	index := make(map[string]int)
	var rows []Row

	for _, meal := range plan.Meals {
		for _, service := range meal.Services {
			for _, item := range service.Items {
				if strings.TrimSpace(item.Name) == "" {
					continue
				}
				source := Source{
					MealID:       meal.ID,
					MealDate:     meal.Date,
					MealTitle:    meal.Title,
					ServiceID:    service.ID,
					ServiceTitle: service.Title,
					ItemID:       item.ID,
					Quantity:     item.Quantity,
					PersonID:     item.PersonID,
					Checked:      item.Checked,
				}

				key := normalizedKey(item.Name, item.Category)
				position, seen := index[key]
				if !seen {
					index[key] = len(rows)
					rows = append(rows, Row{
						Name:     strings.Join(strings.Fields(item.Name), " "),
						Category: item.Category,
						Sources:  []Source{source},
						Checked:  item.Checked,
					})
					continue
				}
				rows[position].Sources = append(rows[position].Sources, source)
				rows[position].Checked = rows[position].Checked && item.Checked
			}
		}
	}

	return rows
}

// FilterByPerson keeps rows with at least one source assigned to the
// person, trimming each kept row to that person's sources. An empty
// personID returns all rows unchanged.
func FilterByPerson(rows []Row, personID string) []Row {
	if personID == "" {
		return rows
	}

	var filtered []Row
	for _, row := range rows {
		var kept []Source
		checked := true
		for _, source := range row.Sources {
			if source.PersonID != nil && *source.PersonID == personID {
				kept = append(kept, source)
				checked = checked && source.Checked
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered = append(filtered, Row{
			Name:     row.Name,
			Category: row.Category,
			Sources:  kept,
			Checked:  checked,
		})
	}
	return filtered
}

// SortByCategory orders rows by category (uncategorized last) then
// name, for the aisle-by-aisle view. The input slice is not modified.
func SortByCategory(rows []Row) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)

	rank := make(map[string]int, len(models.ShoppingCategories))
	for position, category := range models.ShoppingCategories {
		rank[category] = position
	}
	categoryRank := func(row Row) int {
		if row.Category == nil {
			return len(models.ShoppingCategories)
		}
		if position, ok := rank[*row.Category]; ok {
			return position
		}
		return len(models.ShoppingCategories)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		left, right := categoryRank(sorted[i]), categoryRank(sorted[j])
		if left != right {
			return left < right
		}
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})
	return sorted
}

// ItemUpdater applies one field-level update to a single item.
// Implemented by the item service; tests substitute a recorder.
type ItemUpdater interface {
	UpdateShoppingItem(ctx context.Context, itemID string, update ItemUpdate) error
}

// ItemUpdate carries the fields an aggregated-row edit propagates. Nil
// fields are left untouched on each source.
type ItemUpdate struct {
	Name     *string
	Quantity *string
	Checked  *bool
}

// FanOutUpdate applies the update to every source of the row, one at a
// time. The first failure stops the fan-out and is returned with the
// offending item named; earlier sources stay updated.
func FanOutUpdate(ctx context.Context, updater ItemUpdater, row Row, update ItemUpdate) error {
	for _, source := range row.Sources {
		if err := updater.UpdateShoppingItem(ctx, source.ItemID, update); err != nil {
			return fmt.Errorf("updating source item %s of %q: %w", source.ItemID, row.Name, err)
		}
	}
	return nil
}
