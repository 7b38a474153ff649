package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/internal/notices"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/security"
	"github.com/angelmondragon/ecofinds-backend/pkg/storage/memory"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type harness struct {
	t       *testing.T
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:                config.AppEnvDev,
			CORSAllowedOrigins: []string{"http://localhost:9002"},
		},
	}
}

func newHarness(t *testing.T, pingers map[string]controllers.Pinger, metrics http.Handler) harness {
	t.Helper()
	logg := logger.Nop()
	rec := notices.NewRecorder(notices.DefaultCapacity, logg)
	store, err := marketplace.NewStore(context.Background(), marketplace.StoreParams{
		Storage: memory.New(),
		Verifier: security.NewArgonVerifier(config.PasswordConfig{
			ArgonMemoryKB:    64,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		}),
		Logger:      logg,
		Notifier:    rec,
		AdminBypass: true,
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return harness{t: t, handler: NewRouter(testConfig(), logg, store, rec, pingers, metrics)}
}

func (h harness) do(method, path string, body any) (int, envelope) {
	h.t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			h.t.Fatalf("%s %s: decode response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func (h harness) expect(method, path string, body any, status int) envelope {
	h.t.Helper()
	code, env := h.do(method, path, body)
	if code != status {
		msg := ""
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		h.t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, status, code, msg)
	}
	return env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
	return out
}

func listingBody(quantity int) map[string]any {
	return map[string]any{
		"title":            "Vintage Lamp",
		"description":      "Brass desk lamp in working order",
		"category":         "Home Goods",
		"price":            100,
		"imageUrl":         "https://example.com/lamp.jpg",
		"quantity":         quantity,
		"condition":        "Used - Good",
		"workingCondition": "Fully working",
	}
}

func TestHealthRoutes(t *testing.T) {
	h := newHarness(t, map[string]controllers.Pinger{"storage": stubPinger{}}, nil)
	h.expect(http.MethodGet, "/health/live", nil, http.StatusOK)
	h.expect(http.MethodGet, "/health/ready", nil, http.StatusOK)

	failing := newHarness(t, map[string]controllers.Pinger{"storage": stubPinger{err: errors.New("down")}}, nil)
	env := failing.expect(http.MethodGet, "/health/ready", nil, http.StatusServiceUnavailable)
	if env.Error == nil || env.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected dependency error, got %+v", env.Error)
	}
}

func TestMetricsMountedWhenProvided(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":"metrics"}`))
	})
	h := newHarness(t, nil, metrics)
	h.expect(http.MethodGet, "/metrics", nil, http.StatusOK)

	bare := newHarness(t, nil, nil)
	code, _ := bare.do(http.MethodGet, "/metrics", nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 without metrics handler, got %d", code)
	}
}

func TestMarketplaceFlow(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.expect(http.MethodGet, "/api/v1/account", nil, http.StatusUnauthorized)
	h.expect(http.MethodPost, "/api/v1/products", listingBody(1), http.StatusUnauthorized)

	seller := decodeData[marketplace.PublicUser](t, h.expect(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "secret123",
	}, http.StatusCreated))
	if seller.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", seller.Email)
	}

	h.expect(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret123",
	}, http.StatusConflict)

	product := decodeData[marketplace.Product](t, h.expect(http.MethodPost, "/api/v1/products", listingBody(1), http.StatusCreated))
	if product.UserID != seller.ID || product.ID == "" {
		t.Fatalf("unexpected product %+v", product)
	}

	listed := decodeData[[]marketplace.Product](t, h.expect(http.MethodGet, "/api/v1/products?q=LAMP&category=Home%20Goods", nil, http.StatusOK))
	if len(listed) != 1 {
		t.Fatalf("expected 1 listed product, got %d", len(listed))
	}
	h.expect(http.MethodGet, "/api/v1/products?category=Toys", nil, http.StatusBadRequest)

	mine := decodeData[[]marketplace.Product](t, h.expect(http.MethodGet, "/api/v1/products/mine", nil, http.StatusOK))
	if len(mine) != 1 {
		t.Fatalf("expected 1 owned product, got %d", len(mine))
	}
	categories := decodeData[[]string](t, h.expect(http.MethodGet, "/api/v1/products/categories", nil, http.StatusOK))
	if len(categories) != 1 || categories[0] != "Home Goods" {
		t.Fatalf("unexpected categories %v", categories)
	}

	h.expect(http.MethodPost, "/api/v1/auth/logout", nil, http.StatusNoContent)
	buyer := decodeData[marketplace.PublicUser](t, h.expect(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "secret123",
	}, http.StatusCreated))

	h.expect(http.MethodPut, "/api/v1/products/"+product.ID, listingBody(5), http.StatusForbidden)
	h.expect(http.MethodGet, "/api/v1/products/missing", nil, http.StatusNotFound)

	owner := decodeData[marketplace.PublicUser](t, h.expect(http.MethodGet, "/api/v1/users/"+seller.ID, nil, http.StatusOK))
	if owner.Username != "alice" {
		t.Fatalf("unexpected seller %+v", owner)
	}
	h.expect(http.MethodGet, "/api/v1/users/nobody", nil, http.StatusNotFound)

	h.expect(http.MethodPost, "/api/v1/checkout", nil, http.StatusUnprocessableEntity)

	added := decodeData[map[string]any](t, h.expect(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": product.ID}, http.StatusCreated))
	if added["added"] != true {
		t.Fatalf("expected added=true, got %v", added)
	}
	dup := decodeData[map[string]any](t, h.expect(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": product.ID}, http.StatusOK))
	if dup["added"] != false || dup["reason"] != "ALREADY_IN_CART" {
		t.Fatalf("expected duplicate notice, got %v", dup)
	}

	purchase := decodeData[marketplace.Purchase](t, h.expect(http.MethodPost, "/api/v1/checkout", nil, http.StatusCreated))
	if purchase.UserID != buyer.ID || len(purchase.Items) != 1 || purchase.Total.String() != "100" {
		t.Fatalf("unexpected purchase %+v", purchase)
	}

	purchases := decodeData[[]marketplace.Purchase](t, h.expect(http.MethodGet, "/api/v1/purchases", nil, http.StatusOK))
	if len(purchases) != 1 || purchases[0].ID != purchase.ID {
		t.Fatalf("unexpected purchases %+v", purchases)
	}

	env := h.expect(http.MethodPost, "/api/v1/cart/items", map[string]any{"productId": product.ID}, http.StatusConflict)
	if env.Error == nil || env.Error.Code != "OUT_OF_STOCK" {
		t.Fatalf("expected out of stock, got %+v", env.Error)
	}

	cart := decodeData[map[string]any](t, h.expect(http.MethodGet, "/api/v1/cart", nil, http.StatusOK))
	if cart["count"] != float64(0) {
		t.Fatalf("expected empty cart, got %v", cart)
	}

	drained := decodeData[[]notices.Notice](t, h.expect(http.MethodGet, "/api/v1/notices", nil, http.StatusOK))
	if len(drained) == 0 || drained[len(drained)-1].Title != "Out of Stock" {
		t.Fatalf("unexpected notices %+v", drained)
	}
	again := decodeData[[]notices.Notice](t, h.expect(http.MethodGet, "/api/v1/notices", nil, http.StatusOK))
	if len(again) != 0 {
		t.Fatalf("expected notices drained, got %d", len(again))
	}
}

func TestProfileUpdateAndAdminLogin(t *testing.T) {
	h := newHarness(t, nil, nil)

	admin := decodeData[marketplace.PublicUser](t, h.expect(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "Adminlogin@123",
	}, http.StatusOK))
	if admin.ID != marketplace.AdminUserID {
		t.Fatalf("expected admin session, got %+v", admin)
	}
	h.expect(http.MethodPost, "/api/v1/auth/logout", nil, http.StatusNoContent)

	h.expect(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "ghost@example.com",
		"password": "whatever",
	}, http.StatusUnauthorized)

	h.expect(http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "secret123",
	}, http.StatusCreated)
	h.expect(http.MethodPost, "/api/v1/auth/logout", nil, http.StatusNoContent)
	h.expect(http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "carol@example.com",
		"password": "secret123",
	}, http.StatusOK)

	updated := decodeData[marketplace.PublicUser](t, h.expect(http.MethodPatch, "/api/v1/account", map[string]any{
		"username": "caroline",
	}, http.StatusOK))
	if updated.Username != "caroline" || updated.Email != "carol@example.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	h.expect(http.MethodPatch, "/api/v1/account", map[string]any{"email": "not-an-email"}, http.StatusBadRequest)
}
