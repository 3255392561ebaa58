package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sliceworks/pizza-backend/internal/model"
	"github.com/sliceworks/pizza-backend/internal/repository"
	"github.com/sliceworks/pizza-backend/internal/testutil"
)

func seedMenu(t *testing.T, menu *repository.MenuRepo, items ...model.MenuItem) []model.MenuItem {
	t.Helper()
	out := make([]model.MenuItem, 0, len(items))
	for _, it := range items {
		if err := menu.Add(context.Background(), &it); err != nil {
			t.Fatalf("seed menu item %q: %v", it.Title, err)
		}
		out = append(out, it)
	}
	return out
}

func TestMenuAddAndList(t *testing.T) {
	db := testutil.OpenDB(t, "menu_basic")
	menu := repository.NewMenuRepo(db)

	empty, err := menu.List(context.Background())
	if err != nil {
		t.Fatalf("list empty menu: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil menu, got %#v", empty)
	}

	seeded := seedMenu(t, menu,
		model.MenuItem{Title: "Veggie", Description: "A garden of delight", Image: "pizza1.png", Price: 0.0038},
		model.MenuItem{Title: "Pepperoni", Description: "Spicy treat", Image: "pizza2.png", Price: 0.0042},
	)
	if seeded[0].ID == 0 || seeded[1].ID == 0 {
		t.Fatal("expected generated ids on Add")
	}

	got, err := menu.List(context.Background())
	if err != nil {
		t.Fatalf("list menu: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Veggie" || got[1].Title != "Pepperoni" {
		t.Fatalf("unexpected menu: %+v", got)
	}
}

func TestPlaceOrderSnapshotsItems(t *testing.T) {
	db := testutil.OpenDB(t, "order_place")
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	seeded := seedMenu(t, menu,
		model.MenuItem{Title: "Veggie", Description: "A garden of delight", Image: "pizza1.png", Price: 0.0038},
		model.MenuItem{Title: "Margherita", Description: "Essential classic", Image: "pizza3.png", Price: 0.0014},
	)

	draft := &model.Order{
		FranchiseID: 1,
		StoreID:     1,
		Items: []model.OrderItem{
			{MenuID: seeded[0].ID, Description: "Veggie", Price: 0.0038},
			{MenuID: seeded[1].ID, Description: "Margherita", Price: 0.0014},
			{MenuID: seeded[0].ID, Description: "Veggie", Price: 0.0038},
		},
	}
	placed, err := orders.Place(ctx, 42, draft)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if placed.ID == 0 || placed.DinerID != 42 {
		t.Fatalf("unexpected order header: %+v", placed)
	}
	if len(placed.Items) != 3 {
		t.Fatalf("expected 3 item rows, got %d", len(placed.Items))
	}
	for i, it := range placed.Items {
		if it.ID == 0 || it.OrderID != placed.ID {
			t.Fatalf("item %d not linked to order: %+v", i, it)
		}
		if it.Description != draft.Items[i].Description || it.Price != draft.Items[i].Price {
			t.Fatalf("item %d lost its snapshot values: %+v", i, it)
		}
	}

	listed, err := orders.ListForDiner(ctx, 42, 1, 10)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(listed) != 1 || len(listed[0].Items) != 3 {
		t.Fatalf("expected the placed order with its items, got %+v", listed)
	}
	if !listed[0].Date.Equal(placed.Date) {
		t.Fatalf("date round-trip mismatch: %v vs %v", listed[0].Date, placed.Date)
	}
}

func TestPlaceOrderUnknownMenuItemRollsBack(t *testing.T) {
	db := testutil.OpenDB(t, "order_rollback")
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	seeded := seedMenu(t, menu, model.MenuItem{Title: "Veggie", Description: "d", Image: "i", Price: 0.0038})

	draft := &model.Order{
		FranchiseID: 1,
		StoreID:     1,
		Items: []model.OrderItem{
			{MenuID: seeded[0].ID, Description: "Veggie", Price: 0.0038},
			{MenuID: 9999, Description: "Ghost pizza", Price: 1},
		},
	}
	if _, err := orders.Place(ctx, 7, draft); !errors.Is(err, repository.ErrMenuItemNotFound) {
		t.Fatalf("expected ErrMenuItemNotFound, got %v", err)
	}

	// The first item insert must not survive the failed second one.
	listed, err := orders.ListForDiner(ctx, 7, 1, 10)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("partial order leaked through rollback: %+v", listed)
	}
	var itemRows int
	if err := db.QueryRow(`SELECT COUNT(*) FROM order_items`).Scan(&itemRows); err != nil {
		t.Fatalf("count item rows: %v", err)
	}
	if itemRows != 0 {
		t.Fatalf("expected no item rows after rollback, found %d", itemRows)
	}
}

func TestListForDinerPaginatesAndIsolates(t *testing.T) {
	db := testutil.OpenDB(t, "order_pages")
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	ctx := context.Background()

	seeded := seedMenu(t, menu, model.MenuItem{Title: "Veggie", Description: "d", Image: "i", Price: 0.0038})
	draft := func() *model.Order {
		return &model.Order{FranchiseID: 1, StoreID: 1, Items: []model.OrderItem{
			{MenuID: seeded[0].ID, Description: "Veggie", Price: 0.0038},
		}}
	}

	for i := 0; i < 3; i++ {
		if _, err := orders.Place(ctx, 1, draft()); err != nil {
			t.Fatalf("place order %d: %v", i, err)
		}
	}
	if _, err := orders.Place(ctx, 2, draft()); err != nil {
		t.Fatalf("place order for other diner: %v", err)
	}

	page1, err := orders.ListForDiner(ctx, 1, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	page2, err := orders.ListForDiner(ctx, 1, 2, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page1) != 2 || len(page2) != 1 {
		t.Fatalf("pagination split wrong: %d + %d", len(page1), len(page2))
	}
	if page1[0].ID >= page1[1].ID || page1[1].ID >= page2[0].ID {
		t.Fatal("orders not returned oldest first")
	}
	for _, o := range append(page1, page2...) {
		if o.DinerID != 1 {
			t.Fatalf("foreign diner's order leaked: %+v", o)
		}
	}

	past, err := orders.ListForDiner(ctx, 1, 5, 2)
	if err != nil {
		t.Fatalf("page past end: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("expected empty page past end, got %d", len(past))
	}
}
