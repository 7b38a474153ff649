package marketplace

import (
	"context"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

// Checkout converts the cart into a purchase. Every line must be covered by
// live stock or nothing changes and CodeInsufficientStock is returned with the
// shortfalls as details.
func (s *Store) Checkout(ctx context.Context) (_ *Purchase, err error) {
	defer func(started time.Time) { s.track("checkout", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithUserID(ctx, user.ID)
	if len(s.cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
	}

	if shortfalls := s.stockShortfalls(); len(shortfalls) > 0 {
		s.logg.Warn(s.logg.WithField(ctx, "shortfalls", len(shortfalls)), "checkout rejected: insufficient stock")
		s.notify(ctx, "Checkout Failed", "Some items are no longer available in the requested quantity.", enums.NoticeVariantDestructive)
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").WithDetails(shortfalls)
	}

	for _, item := range s.cart {
		idx := s.productIndex(item.Product.ID)
		s.products[idx].Quantity -= item.Quantity
	}

	purchase := Purchase{
		ID:     s.ids.NewID(PrefixPurchase),
		UserID: user.ID,
		Items:  cloneCart(s.cart),
		Date:   s.now().UTC(),
		Total:  cartTotal(s.cart),
	}
	s.purchases = append([]Purchase{purchase}, s.purchases...)
	s.cart = nil

	ctx = s.logg.WithPurchaseID(ctx, purchase.ID)
	s.persist(ctx, KeyProducts, KeyCart, KeyPurchases)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"items": len(purchase.Items),
		"total": purchase.Total.String(),
	}), "checkout completed")
	s.notify(ctx, "Purchase Complete!", "Thank you for your order.", enums.NoticeVariantDefault)

	out := purchase.clone()
	return &out, nil
}

func (s *Store) stockShortfalls() []StockShortfall {
	var out []StockShortfall
	for _, item := range s.cart {
		available := 0
		if idx := s.productIndex(item.Product.ID); idx >= 0 {
			available = s.products[idx].Quantity
		}
		if item.Quantity > available {
			out = append(out, StockShortfall{
				ProductID: item.Product.ID,
				Title:     item.Product.Title,
				Requested: item.Quantity,
				Available: available,
			})
		}
	}
	return out
}

// Purchases returns the session user's ledger entries, newest first.
func (s *Store) Purchases(ctx context.Context) (_ []Purchase, err error) {
	defer func(started time.Time) { s.track("purchases", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	out := make([]Purchase, 0)
	for _, p := range s.purchases {
		if p.UserID == user.ID {
			out = append(out, p.clone())
		}
	}
	return out, nil
}
