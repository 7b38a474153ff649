package marketplace

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// AddToCart appends one unit of the product. A product already in the cart
// yields an informational CodeAlreadyInCart error and leaves the cart as is.
func (s *Store) AddToCart(ctx context.Context, productID string) (err error) {
	defer func(started time.Time) { s.track("add_to_cart", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.requireSession()
	if err != nil {
		return err
	}
	idx := s.productIndex(productID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product := s.products[idx]
	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, user.ID), product.ID)

	if product.Quantity <= 0 {
		s.notify(ctx, "Out of Stock", "This item is currently unavailable.", enums.NoticeVariantDestructive)
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock")
	}
	if s.cartIndex(product.ID) >= 0 {
		s.notify(ctx, "Already in cart", "You can only have one of each item.", enums.NoticeVariantDefault)
		return pkgerrors.New(pkgerrors.CodeAlreadyInCart, "product already in cart")
	}

	s.cart = append(s.cart, CartItem{Product: product.clone(), Quantity: 1})
	s.persist(ctx, KeyCart)
	s.logg.Debug(ctx, "product added to cart")
	s.notify(ctx, "Added to cart", fmt.Sprintf("\"%s\" has been added to your cart.", product.Title), enums.NoticeVariantDefault)
	return nil
}

// RemoveFromCart drops the line for productID; absent ids are a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, productID string) (err error) {
	defer func(started time.Time) { s.track("remove_from_cart", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.requireSession(); err != nil {
		return err
	}
	idx := s.cartIndex(productID)
	if idx < 0 {
		return nil
	}
	s.cart = append(s.cart[:idx:idx], s.cart[idx+1:]...)
	s.persist(s.logg.WithProductID(ctx, productID), KeyCart)
	return nil
}

// ClearCart empties the cart unconditionally.
func (s *Store) ClearCart(ctx context.Context) (err error) {
	defer func(started time.Time) { s.track("clear_cart", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = nil
	s.persist(ctx, KeyCart)
	return nil
}

// Cart returns a copy of the cart lines in insertion order.
func (s *Store) Cart() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCart(s.cart)
}

// CartTotal sums price times quantity over the cart snapshots.
func (s *Store) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cartTotal(s.cart)
}

func cartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}
