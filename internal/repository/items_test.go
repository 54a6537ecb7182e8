package repository_test

import (
	"context"
	"testing"

	"github.com/yogz/colist/internal/models"
	"github.com/yogz/colist/internal/repository"
	"github.com/yogz/colist/internal/testutil"
)

func TestItemRepository_Assign(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db)
	meal := createTestMeal(t, db, event.ID, "2025-12-24")
	service := createTestService(t, db, meal.ID, "Plat")
	item := createTestItem(t, db, service.ID, "Raclette")
	person := createTestPerson(t, db, event.ID, "Cécile")

	if err := itemRepo.Assign(ctx, item.ID, &person.ID); err != nil {
		t.Fatalf("assigning item: %v", err)
	}

	found, err := itemRepo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("finding item: %v", err)
	}
	if found.PersonID == nil || *found.PersonID != person.ID {
		t.Errorf("expected person %s, got %v", person.ID, found.PersonID)
	}

	// Unassign back to "à prévoir"
	if err := itemRepo.Assign(ctx, item.ID, nil); err != nil {
		t.Fatalf("unassigning item: %v", err)
	}
	found, _ = itemRepo.FindByID(ctx, item.ID)
	if found.PersonID != nil {
		t.Errorf("expected unassigned item, got %v", found.PersonID)
	}
}

func TestItemRepository_Move_WithTargetOrderShiftsSiblings(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db)
	meal := createTestMeal(t, db, event.ID, "2025-12-24")
	source := createTestService(t, db, meal.ID, "Plat")
	target := createTestService(t, db, meal.ID, "Dessert")

	moved := createTestItem(t, db, source.ID, "Tarte")
	first := createTestItem(t, db, target.ID, "Bûche")
	second := createTestItem(t, db, target.ID, "Fruits")
	itemRepo.Update(ctx, withOrder(first, 0))
	itemRepo.Update(ctx, withOrder(second, 1))

	targetOrder := 0
	if err := itemRepo.Move(ctx, moved.ID, target.ID, &targetOrder); err != nil {
		t.Fatalf("moving item: %v", err)
	}

	items, err := itemRepo.FindByServiceID(ctx, target.ID)
	if err != nil {
		t.Fatalf("finding target items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items in target, got %d", len(items))
	}
	if items[0].Name != "Tarte" {
		t.Errorf("expected moved item spliced first, got %q", items[0].Name)
	}
	if items[1].Name != "Bûche" || items[2].Name != "Fruits" {
		t.Errorf("expected siblings shifted in order, got %q then %q", items[1].Name, items[2].Name)
	}
}

func TestItemRepository_Move_WithoutTargetOrderAppends(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db)
	meal := createTestMeal(t, db, event.ID, "2025-12-24")
	source := createTestService(t, db, meal.ID, "Plat")
	target := createTestService(t, db, meal.ID, "Dessert")

	existing := createTestItem(t, db, target.ID, "Bûche")
	itemRepo.Update(ctx, withOrder(existing, 0))
	moved := createTestItem(t, db, source.ID, "Tarte")

	if err := itemRepo.Move(ctx, moved.ID, target.ID, nil); err != nil {
		t.Fatalf("moving item: %v", err)
	}

	items, _ := itemRepo.FindByServiceID(ctx, target.ID)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].Name != "Tarte" {
		t.Errorf("expected moved item appended last, got %q", items[1].Name)
	}
}

func TestItemRepository_SetChecked(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db)
	meal := createTestMeal(t, db, event.ID, "2025-12-24")
	service := createTestService(t, db, meal.ID, "Plat")
	item := createTestItem(t, db, service.ID, "Raclette")

	if err := itemRepo.SetChecked(ctx, item.ID, true); err != nil {
		t.Fatalf("checking item: %v", err)
	}
	found, _ := itemRepo.FindByID(ctx, item.ID)
	if !found.Checked {
		t.Error("expected item checked")
	}
}

func TestItemRepository_DeletePersonUnassignsItems(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	personRepo := repository.NewPersonRepository(db)
	ctx := context.Background()

	event := createTestEvent(t, db)
	meal := createTestMeal(t, db, event.ID, "2025-12-24")
	service := createTestService(t, db, meal.ID, "Plat")
	item := createTestItem(t, db, service.ID, "Raclette")
	person := createTestPerson(t, db, event.ID, "Marc")

	itemRepo.Assign(ctx, item.ID, &person.ID)
	if err := personRepo.Delete(ctx, person.ID); err != nil {
		t.Fatalf("deleting person: %v", err)
	}

	found, err := itemRepo.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("item should survive person deletion: %v", err)
	}
	if found.PersonID != nil {
		t.Errorf("expected item unassigned after person deletion, got %v", found.PersonID)
	}
}

func withOrder(item models.Item, order int) models.Item {
	item.OrderIndex = order
	return item
}
