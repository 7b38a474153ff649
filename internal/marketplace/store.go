package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/notices"
	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/metrics"
	"go.uber.org/multierr"
)

// Store is the single authority over users, products, the cart, the purchase
// ledger and the session. Every operation holds the store mutex for its full
// duration and mirrors the touched collections to Storage afterwards.
type Store struct {
	mu sync.Mutex

	storage     Storage
	verifier    CredentialVerifier
	ids         IDGenerator
	notifier    Notifier
	metrics     storeMetrics
	logg        *logger.Logger
	now         func() time.Time
	adminBypass bool

	users     []User
	products  []Product
	session   *PublicUser
	cart      []CartItem
	purchases []Purchase
}

// StoreParams bundles the dependencies required to build a Store.
type StoreParams struct {
	Storage  Storage
	Verifier CredentialVerifier
	Logger   *logger.Logger

	IDs      IDGenerator
	Notifier Notifier
	Metrics  storeMetrics
	Clock    func() time.Time

	// AdminBypass accepts the built-in demo admin credentials.
	AdminBypass bool
	// Seed supplies state for keys that are missing or unreadable in Storage.
	Seed *Snapshot
}

// NewStore builds a store and restores its state from Storage.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if params.Verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	s := &Store{
		storage:     params.Storage,
		verifier:    params.Verifier,
		ids:         params.IDs,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         params.Clock,
		adminBypass: params.AdminBypass,
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = (*metrics.StoreMetrics)(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.load(ctx, params.Seed)
	return s, nil
}

func (s *Store) load(ctx context.Context, seed *Snapshot) {
	if seed == nil {
		seed = &Snapshot{}
	}
	var seeded []string
	restore := func(key string, ok bool) {
		if !ok {
			seeded = append(seeded, key)
		}
	}

	var ok bool
	s.users, ok = loadKey(ctx, s, KeyUsers, cloneUsers(seed.Users))
	restore(KeyUsers, ok)
	s.products, ok = loadKey(ctx, s, KeyProducts, cloneProducts(seed.Products))
	restore(KeyProducts, ok)
	s.session, ok = loadKey(ctx, s, KeyCurrentUser, clonePublicUser(seed.CurrentUser))
	restore(KeyCurrentUser, ok)
	s.cart, ok = loadKey(ctx, s, KeyCart, cloneCart(seed.Cart))
	restore(KeyCart, ok)
	s.purchases, ok = loadKey(ctx, s, KeyPurchases, clonePurchases(seed.Purchases))
	restore(KeyPurchases, ok)
	rescaleMoney(s.products, s.cart, s.purchases)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"users":     len(s.users),
		"products":  len(s.products),
		"cart":      len(s.cart),
		"purchases": len(s.purchases),
		"seeded":    seeded,
	}), "marketplace state restored")

	if len(seeded) > 0 {
		s.persist(ctx, seeded...)
	}
}

// loadKey decodes key from storage, returning fallback and false when the key
// is missing, unreadable or corrupt.
func loadKey[T any](ctx context.Context, s *Store, key string, fallback T) (T, bool) {
	ctx = s.logg.WithField(ctx, "key", key)
	raw, found, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logg.Error(ctx, "read persisted state", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read persisted state"))
		return fallback, false
	}
	if !found {
		return fallback, false
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("discarding corrupt persisted state: %v", err))
		return fallback, false
	}
	return value, true
}

// persist mirrors the named collections. Failures are logged and counted but
// never undo the in-memory mutation.
func (s *Store) persist(ctx context.Context, keys ...string) {
	values := make(map[string][]byte, len(keys))
	var errs error
	for _, key := range keys {
		raw, err := json.Marshal(s.collection(key))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("encode %s: %w", key, err))
			s.metrics.IncPersistenceFailure(key)
			continue
		}
		values[key] = raw
	}

	if batch, ok := s.storage.(batchStorage); ok {
		if err := batch.SetMany(ctx, values); err != nil {
			errs = multierr.Append(errs, err)
			for key := range values {
				s.metrics.IncPersistenceFailure(key)
			}
		}
	} else {
		for _, key := range keys {
			raw, ok := values[key]
			if !ok {
				continue
			}
			if err := s.storage.Set(ctx, key, raw); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("write %s: %w", key, err))
				s.metrics.IncPersistenceFailure(key)
			}
		}
	}

	if errs != nil {
		failure := pkgerrors.Wrap(pkgerrors.CodePersistenceWriteFailed, errs, "persist marketplace state")
		s.logg.Error(s.logg.WithField(ctx, "keys", keys), "state persistence failed", failure)
	}
}

func (s *Store) collection(key string) any {
	switch key {
	case KeyUsers:
		return nonNil(s.users)
	case KeyProducts:
		return nonNil(s.products)
	case KeyCurrentUser:
		return s.session
	case KeyCart:
		return nonNil(s.cart)
	case KeyPurchases:
		return nonNil(s.purchases)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Snapshot returns a deep copy of the full state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Users:       cloneUsers(s.users),
		Products:    cloneProducts(s.products),
		CurrentUser: clonePublicUser(s.session),
		Cart:        cloneCart(s.cart),
		Purchases:   clonePurchases(s.purchases),
	}
}

// track records duration and outcome metrics for op.
func (s *Store) track(op string, started time.Time, err error) {
	s.metrics.ObserveDuration(op, time.Since(started))
	if err == nil {
		s.metrics.IncSuccess(op)
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncFailure(op, string(code))
}

func (s *Store) notify(ctx context.Context, title, description string, variant enums.NoticeVariant) {
	s.notifier.Notify(ctx, notices.Notice{Title: title, Description: description, Variant: variant})
}

func (s *Store) requireSession() (*PublicUser, error) {
	if s.session == nil {
		return nil, errNoSession()
	}
	return s.session, nil
}

func errNoSession() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) cartIndex(productID string) int {
	for i := range s.cart {
		if s.cart[i].Product.ID == productID {
			return i
		}
	}
	return -1
}
