package marketplace

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/validate"
)

// AddProduct lists a new product owned by the session user. New listings are
// prepended so the catalog stays newest-first.
func (s *Store) AddProduct(ctx context.Context, in ProductInput) (_ *Product, err error) {
	defer func(started time.Time) { s.track("add_product", started, err) }(time.Now())

	in = in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return nil, err
	}

	product := in.toProduct(s.ids.NewID(PrefixProduct), owner.ID)
	s.products = append([]Product{product}, s.products...)

	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, owner.ID), product.ID)
	s.persist(ctx, KeyProducts)
	s.logg.Info(ctx, "product listed")
	s.notify(ctx, "Listing Created!", fmt.Sprintf("Your item \"%s\" is now for sale.", product.Title), enums.NoticeVariantDefault)

	out := product.clone()
	return &out, nil
}

// UpdateProduct replaces the editable fields of a listing owned by the session
// user. The owner and id cannot change. A cart line holding the product is
// refreshed to the new values.
func (s *Store) UpdateProduct(ctx context.Context, product Product) (_ *Product, err error) {
	defer func(started time.Time) { s.track("update_product", started, err) }(time.Now())

	in := product.Input().normalize()
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	idx := s.productIndex(product.ID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	existing := s.products[idx]
	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, owner.ID), existing.ID)
	if existing.UserID != owner.ID {
		s.logg.Warn(ctx, "product update rejected: not owner")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can edit this listing")
	}

	updated := in.toProduct(existing.ID, existing.UserID)
	s.products[idx] = updated

	keys := []string{KeyProducts}
	if i := s.cartIndex(updated.ID); i >= 0 {
		s.cart[i].Product = updated.clone()
		keys = append(keys, KeyCart)
	}
	s.persist(ctx, keys...)
	s.logg.Info(ctx, "product updated")
	s.notify(ctx, "Listing Updated!", fmt.Sprintf("Your item \"%s\" has been saved.", updated.Title), enums.NoticeVariantDefault)

	out := updated.clone()
	return &out, nil
}

// DeleteProduct removes a listing owned by the session user and drops it from
// the cart. Purchases keep their own copies. Unknown ids are a no-op.
func (s *Store) DeleteProduct(ctx context.Context, id string) (err error) {
	defer func(started time.Time) { s.track("delete_product", started, err) }(time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.requireSession()
	if err != nil {
		return err
	}
	idx := s.productIndex(id)
	if idx < 0 {
		return nil
	}
	ctx = s.logg.WithProductID(s.logg.WithUserID(ctx, owner.ID), id)
	if s.products[idx].UserID != owner.ID {
		s.logg.Warn(ctx, "product delete rejected: not owner")
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete this listing")
	}

	s.products = append(s.products[:idx:idx], s.products[idx+1:]...)
	keys := []string{KeyProducts}
	if i := s.cartIndex(id); i >= 0 {
		s.cart = append(s.cart[:i:i], s.cart[i+1:]...)
		keys = append(keys, KeyCart)
	}
	s.persist(ctx, keys...)
	s.logg.Info(ctx, "product deleted")
	return nil
}

// GetProductByID returns a copy of the catalog entry.
func (s *Store) GetProductByID(id string) (*Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.productIndex(id)
	if idx < 0 {
		return nil, false
	}
	out := s.products[idx].clone()
	return &out, true
}

// ListCategories returns the distinct categories present in the catalog, sorted.
func (s *Store) ListCategories() []enums.ProductCategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[enums.ProductCategory]struct{})
	out := make([]enums.ProductCategory, 0)
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ListProducts returns catalog entries whose title contains filter.Query
// (case-insensitive) and whose category matches filter.Category when set.
func (s *Store) ListProducts(filter ProductFilter) []Product {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) {
			continue
		}
		out = append(out, p.clone())
	}
	return out
}

// ListProductsByOwner returns the listings of userID in catalog order.
func (s *Store) ListProductsByOwner(userID string) []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Product, 0)
	for _, p := range s.products {
		if p.UserID == userID {
			out = append(out, p.clone())
		}
	}
	return out
}
