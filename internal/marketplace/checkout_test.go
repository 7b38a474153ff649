package marketplace

import (
	"context"
	"testing"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/storage/memory"
	"github.com/shopspring/decimal"
)

func TestAddToCartTwiceKeepsSingleLine(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	product := mustAddProduct(t, ts.Store, sampleInput())

	if err := ts.AddToCart(ctx, product.ID); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if n := lastNotice(t, ts.notices); n.Description != `"Vintage Lamp" has been added to your cart.` {
		t.Fatalf("unexpected notice %+v", n)
	}

	err := ts.AddToCart(ctx, product.ID)
	requireCode(t, err, pkgerrors.CodeAlreadyInCart)
	if !pkgerrors.IsInformational(err) {
		t.Fatalf("already-in-cart must be informational")
	}
	if n := lastNotice(t, ts.notices); n.Title != "Already in cart" {
		t.Fatalf("unexpected notice %+v", n)
	}

	cart := ts.Cart()
	if len(cart) != 1 || cart[0].Quantity != 1 {
		t.Fatalf("expected one line with quantity 1, got %+v", cart)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")

	requireCode(t, ts.AddToCart(context.Background(), "prod-missing"), pkgerrors.CodeNotFound)
}

func TestAddToCartOutOfStock(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	in := sampleInput()
	in.Quantity = 1
	product := mustAddProduct(t, ts.Store, in)

	if err := ts.AddToCart(ctx, product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ts.Checkout(ctx); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	ts.notices.Drain()

	requireCode(t, ts.AddToCart(ctx, product.ID), pkgerrors.CodeOutOfStock)
	if len(ts.Cart()) != 0 {
		t.Fatalf("out of stock add must leave cart unchanged")
	}
	n := lastNotice(t, ts.notices)
	if n.Title != "Out of Stock" || n.Variant != enums.NoticeVariantDestructive {
		t.Fatalf("unexpected notice %+v", n)
	}
}

func TestRemoveAndClearCart(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	a := mustAddProduct(t, ts.Store, sampleInput())
	b := mustAddProduct(t, ts.Store, sampleInput())
	for _, id := range []string{a.ID, b.ID} {
		if err := ts.AddToCart(ctx, id); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if !ts.CartTotal().Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected total %s", ts.CartTotal())
	}

	if err := ts.RemoveFromCart(ctx, "prod-missing"); err != nil {
		t.Fatalf("missing remove should be a no-op: %v", err)
	}
	if err := ts.RemoveFromCart(ctx, a.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if cart := ts.Cart(); len(cart) != 1 || cart[0].Product.ID != b.ID {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if err := ts.ClearCart(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(ts.Cart()) != 0 || !ts.CartTotal().IsZero() {
		t.Fatalf("expected empty cart")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	product := mustAddProduct(t, ts.Store, sampleInput())

	_, err := ts.Checkout(context.Background())
	requireCode(t, err, pkgerrors.CodeEmptyCart)

	if len(ts.Snapshot().Purchases) != 0 {
		t.Fatalf("empty checkout must not record a purchase")
	}
	if got, _ := ts.GetProductByID(product.ID); got.Quantity != 2 {
		t.Fatalf("empty checkout must not touch stock, got %d", got.Quantity)
	}
}

func TestCheckoutScenario(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t, memory.New())
	alice := mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	product := mustAddProduct(t, ts.Store, sampleInput())
	if err := ts.AddToCart(ctx, product.ID); err != nil {
		t.Fatalf("add to cart: %v", err)
	}

	purchase, err := ts.Checkout(ctx)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !purchase.Total.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected total 100.00, got %s", purchase.Total)
	}
	if purchase.UserID != alice.ID || !purchase.Date.Equal(fixedNow) || len(purchase.Items) != 1 {
		t.Fatalf("unexpected purchase %+v", purchase)
	}
	if len(ts.Cart()) != 0 {
		t.Fatalf("expected empty cart after checkout")
	}
	if got, _ := ts.GetProductByID(product.ID); got.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", got.Quantity)
	}
	ledger := ts.Snapshot().Purchases
	if len(ledger) != 1 || ledger[0].ID != purchase.ID {
		t.Fatalf("expected ledger of length 1, got %+v", ledger)
	}
	if n := lastNotice(t, ts.notices); n.Title != "Purchase Complete!" {
		t.Fatalf("unexpected notice %+v", n)
	}

	// Later catalog changes never reach the ledger.
	edit := *product
	edit.Title = "Renamed Lamp"
	edit.Price = decimal.NewFromInt(5)
	edit.Quantity = 1
	if _, err := ts.UpdateProduct(ctx, edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := ts.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	history, err := ts.Purchases(ctx)
	if err != nil {
		t.Fatalf("purchases: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected one purchase, got %d", len(history))
	}
	item := history[0].Items[0]
	if item.Product.Title != "Vintage Lamp" || !item.Product.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("purchase snapshot changed: %+v", item.Product)
	}
	if !history[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("purchase total changed: %s", history[0].Total)
	}
}

func TestCheckoutInsufficientStockIsAtomic(t *testing.T) {
	ctx := context.Background()
	okProduct := sampleInput().toProduct("prod-ok", "user-alice")
	soldOut := sampleInput().toProduct("prod-gone", "user-alice")
	soldOut.Quantity = 0
	seed := &Snapshot{
		Users:       []User{{ID: "user-bob", Username: "bob", Email: "bob@x.com", PasswordHash: "plain:secret1"}},
		Products:    []Product{okProduct, soldOut},
		CurrentUser: &PublicUser{ID: "user-bob", Username: "bob", Email: "bob@x.com"},
		Cart: []CartItem{
			{Product: okProduct, Quantity: 1},
			{Product: soldOut, Quantity: 1},
		},
	}
	ts := newTestStore(t, memory.New(), func(p *StoreParams) { p.Seed = seed })

	_, err := ts.Checkout(ctx)
	requireCode(t, err, pkgerrors.CodeInsufficientStock)
	shortfalls, ok := pkgerrors.As(err).Details().([]StockShortfall)
	if !ok || len(shortfalls) != 1 || shortfalls[0].ProductID != "prod-gone" || shortfalls[0].Available != 0 {
		t.Fatalf("unexpected shortfalls %+v", pkgerrors.As(err).Details())
	}

	if got, _ := ts.GetProductByID("prod-ok"); got.Quantity != 2 {
		t.Fatalf("failed checkout must not decrement stock, got %d", got.Quantity)
	}
	if len(ts.Cart()) != 2 || len(ts.Snapshot().Purchases) != 0 {
		t.Fatalf("failed checkout must leave cart and ledger untouched")
	}
}

func TestPurchasesAreScopedToSessionUser(t *testing.T) {
	ctx := context.Background()
	ts := newTestStore(t, memory.New())
	mustSignup(t, ts.Store, "alice", "alice@x.com", "secret1")
	product := mustAddProduct(t, ts.Store, sampleInput())
	if err := ts.AddToCart(ctx, product.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := ts.Checkout(ctx); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	ts.Logout(ctx)
	mustSignup(t, ts.Store, "bob", "bob@x.com", "secret1")
	history, err := ts.Purchases(ctx)
	if err != nil {
		t.Fatalf("purchases: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("bob must not see alice's purchases")
	}
}
