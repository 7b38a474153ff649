package marketplace

import (
	"context"
	"time"

	"github.com/angelmondragon/ecofinds-backend/internal/notices"
	"github.com/google/uuid"
)

// Id prefixes per entity.
const (
	PrefixUser     = "user"
	PrefixProduct  = "prod"
	PrefixPurchase = "purchase"
)

// Storage is the durable key-value mirror behind the store.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// batchStorage is implemented by mirrors that can write several keys at once.
type batchStorage interface {
	SetMany(ctx context.Context, values map[string][]byte) error
}

// CredentialVerifier hashes and checks password secrets.
type CredentialVerifier interface {
	Hash(secret string) (string, error)
	Verify(secret, stored string) (bool, error)
}

// IDGenerator issues unique entity ids.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator produces ids shaped like "prod-<uuid>".
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Notifier receives user-facing acknowledgements.
type Notifier interface {
	Notify(ctx context.Context, notice notices.Notice)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notices.Notice) {}

type storeMetrics interface {
	ObserveDuration(op string, duration time.Duration)
	IncSuccess(op string)
	IncFailure(op, code string)
	IncPersistenceFailure(key string)
}
