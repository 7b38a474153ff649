package marketplace

import (
	"strings"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Storage keys of the durable mirror.
const (
	KeyUsers       = "users"
	KeyProducts    = "products"
	KeyCurrentUser = "currentUser"
	KeyCart        = "cart"
	KeyPurchases   = "purchases"
)

// AllKeys lists every persisted key in load order.
var AllKeys = []string{KeyUsers, KeyProducts, KeyCurrentUser, KeyCart, KeyPurchases}

// User is a user directory entry. PasswordHash never leaves the package
// through the Service API.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Public returns the projection that is safe to expose.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Product struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"userId"`
	Title             string                 `json:"title"`
	Description       string                 `json:"description"`
	Category          enums.ProductCategory  `json:"category"`
	Price             decimal.Decimal        `json:"price"`
	ImageURL          string                 `json:"imageUrl"`
	Quantity          int                    `json:"quantity"`
	Condition         enums.ProductCondition `json:"condition"`
	WorkingCondition  string                 `json:"workingCondition"`
	OriginalPackaging bool                   `json:"originalPackaging"`
	ManualIncluded    bool                   `json:"manualIncluded"`
	YearOfManufacture *int                   `json:"yearOfManufacture,omitempty"`
	Brand             *string                `json:"brand,omitempty"`
	Model             *string                `json:"model,omitempty"`
	Dimensions        *string                `json:"dimensions,omitempty"`
	Weight            *string                `json:"weight,omitempty"`
	Material          *string                `json:"material,omitempty"`
	Color             *string                `json:"color,omitempty"`
}

func (p Product) clone() Product {
	out := p
	out.YearOfManufacture = cloneInt(p.YearOfManufacture)
	out.Brand = cloneString(p.Brand)
	out.Model = cloneString(p.Model)
	out.Dimensions = cloneString(p.Dimensions)
	out.Weight = cloneString(p.Weight)
	out.Material = cloneString(p.Material)
	out.Color = cloneString(p.Color)
	return out
}

// Input returns the editable fields of the product.
func (p Product) Input() ProductInput {
	return ProductInput{
		Title:             p.Title,
		Description:       p.Description,
		Category:          p.Category,
		Price:             p.Price,
		ImageURL:          p.ImageURL,
		Quantity:          p.Quantity,
		Condition:         p.Condition,
		WorkingCondition:  p.WorkingCondition,
		OriginalPackaging: p.OriginalPackaging,
		ManualIncluded:    p.ManualIncluded,
		YearOfManufacture: cloneInt(p.YearOfManufacture),
		Brand:             cloneString(p.Brand),
		Model:             cloneString(p.Model),
		Dimensions:        cloneString(p.Dimensions),
		Weight:            cloneString(p.Weight),
		Material:          cloneString(p.Material),
		Color:             cloneString(p.Color),
	}
}

// CartItem holds a snapshot of the product; Quantity is always 1.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

func (c CartItem) clone() CartItem {
	return CartItem{Product: c.Product.clone(), Quantity: c.Quantity}
}

// Subtotal is price times quantity.
func (c CartItem) Subtotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Purchase is an immutable ledger entry.
type Purchase struct {
	ID     string          `json:"id"`
	UserID string          `json:"userId"`
	Items  []CartItem      `json:"items"`
	Date   time.Time       `json:"date"`
	Total  decimal.Decimal `json:"total"`
}

func (p Purchase) clone() Purchase {
	out := p
	out.Items = cloneCart(p.Items)
	return out
}

// ProductInput carries the user-editable listing fields.
type ProductInput struct {
	Title             string                 `json:"title" validate:"required,min=3"`
	Description       string                 `json:"description" validate:"required,min=10"`
	Category          enums.ProductCategory  `json:"category" validate:"required,product_category"`
	Price             decimal.Decimal        `json:"price" validate:"gt=0"`
	ImageURL          string                 `json:"imageUrl" validate:"required,url"`
	Quantity          int                    `json:"quantity" validate:"min=1"`
	Condition         enums.ProductCondition `json:"condition" validate:"required,product_condition"`
	WorkingCondition  string                 `json:"workingCondition" validate:"required,min=3"`
	OriginalPackaging bool                   `json:"originalPackaging"`
	ManualIncluded    bool                   `json:"manualIncluded"`
	YearOfManufacture *int                   `json:"yearOfManufacture,omitempty" validate:"omitnil,gte=0"`
	Brand             *string                `json:"brand,omitempty"`
	Model             *string                `json:"model,omitempty"`
	Dimensions        *string                `json:"dimensions,omitempty"`
	Weight            *string                `json:"weight,omitempty"`
	Material          *string                `json:"material,omitempty"`
	Color             *string                `json:"color,omitempty"`
}

func (in ProductInput) normalize() ProductInput {
	in.Price = roundMoney(in.Price)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.WorkingCondition = strings.TrimSpace(in.WorkingCondition)
	in.Brand = trimOptional(in.Brand)
	in.Model = trimOptional(in.Model)
	in.Dimensions = trimOptional(in.Dimensions)
	in.Weight = trimOptional(in.Weight)
	in.Material = trimOptional(in.Material)
	in.Color = trimOptional(in.Color)
	return in
}

func (in ProductInput) toProduct(id, ownerID string) Product {
	return Product{
		ID:                id,
		UserID:            ownerID,
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		Price:             in.Price,
		ImageURL:          in.ImageURL,
		Quantity:          in.Quantity,
		Condition:         in.Condition,
		WorkingCondition:  in.WorkingCondition,
		OriginalPackaging: in.OriginalPackaging,
		ManualIncluded:    in.ManualIncluded,
		YearOfManufacture: cloneInt(in.YearOfManufacture),
		Brand:             cloneString(in.Brand),
		Model:             cloneString(in.Model),
		Dimensions:        cloneString(in.Dimensions),
		Weight:            cloneString(in.Weight),
		Material:          cloneString(in.Material),
		Color:             cloneString(in.Color),
	}
}

// AsProduct builds an unowned product carrying id, for UpdateProduct callers.
func (in ProductInput) AsProduct(id string) Product {
	return in.toProduct(id, "")
}

type SignupInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfilePatch updates only the non-nil fields.
type ProfilePatch struct {
	Username *string `json:"username,omitempty" validate:"omitnil,min=3"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
}

// ProductFilter narrows ListProducts. Zero values match everything.
type ProductFilter struct {
	Query    string
	Category enums.ProductCategory
}

// StockShortfall describes a cart line that cannot be fulfilled.
type StockShortfall struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Snapshot is the full persisted state, keyed like the durable mirror.
type Snapshot struct {
	Users       []User      `json:"users"`
	Products    []Product   `json:"products"`
	CurrentUser *PublicUser `json:"currentUser"`
	Cart        []CartItem  `json:"cart"`
	Purchases   []Purchase  `json:"purchases"`
}

// moneyPlaces is the fixed scale of every stored amount.
const moneyPlaces = 2

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// rescaleMoney puts decoded amounts back on the stored scale. JSON drops
// trailing zeros, so "19.90" reloads as 19.9 with a shorter exponent.
func rescaleMoney(products []Product, cart []CartItem, purchases []Purchase) {
	for i := range products {
		products[i].Price = roundMoney(products[i].Price)
	}
	for i := range cart {
		cart[i].Product.Price = roundMoney(cart[i].Product.Price)
	}
	for i := range purchases {
		purchases[i].Total = roundMoney(purchases[i].Total)
		for j := range purchases[i].Items {
			purchases[i].Items[j].Product.Price = roundMoney(purchases[i].Items[j].Product.Price)
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneCart(items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		out = append(out, item.clone())
	}
	return out
}

func cloneProducts(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.clone())
	}
	return out
}

func clonePurchases(purchases []Purchase) []Purchase {
	out := make([]Purchase, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, p.clone())
	}
	return out
}

func cloneUsers(users []User) []User {
	out := make([]User, len(users))
	copy(out, users)
	return out
}

func clonePublicUser(u *PublicUser) *PublicUser {
	if u == nil {
		return nil
	}
	out := *u
	return &out
}
