package marketplace

import (
	"context"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Service is the operation set the presentation layer consumes.
type Service interface {
	Signup(ctx context.Context, in SignupInput) (*PublicUser, error)
	Login(ctx context.Context, in LoginInput) (*PublicUser, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, patch ProfilePatch) (*PublicUser, error)
	CurrentUser() *PublicUser
	GetUserByID(id string) (*PublicUser, bool)

	AddProduct(ctx context.Context, in ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, product Product) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProductByID(id string) (*Product, bool)
	ListCategories() []enums.ProductCategory
	ListProducts(filter ProductFilter) []Product
	ListProductsByOwner(userID string) []Product

	AddToCart(ctx context.Context, productID string) error
	RemoveFromCart(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error
	Cart() []CartItem
	CartTotal() decimal.Decimal

	Checkout(ctx context.Context) (*Purchase, error)
	Purchases(ctx context.Context) ([]Purchase, error)
}

var _ Service = (*Store)(nil)
