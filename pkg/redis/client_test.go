package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestStateStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := NewStateStore(&Client{store: mock, namespace: "test"})

	if _, ok, err := store.Get(ctx, "users"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "users", []byte(`[{"id":"user-1"}]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, exists := mock.data["test:state:users"]; !exists {
		t.Fatalf("expected namespaced key, have %v", mock.data)
	}

	value, ok, err := store.Get(ctx, "users")
	if err != nil || !ok {
		t.Fatalf("get failed ok=%v err=%v", ok, err)
	}
	if string(value) != `[{"id":"user-1"}]` {
		t.Fatalf("unexpected value %s", value)
	}
}

func TestGetBytesPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.getErr = errors.New("connection reset")
	client := &Client{store: mock}

	if _, _, err := client.GetBytes(context.Background(), "cart"); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetManyWritesAllKeysInOneCommand(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := NewStateStore(&Client{store: mock, namespace: "shop"})

	err := store.SetMany(ctx, map[string][]byte{
		"products":  []byte(`[]`),
		"cart":      []byte(`[]`),
		"purchases": []byte(`[{"id":"purchase-1"}]`),
	})
	if err != nil {
		t.Fatalf("set many failed: %v", err)
	}
	if mock.msetCalls != 1 || mock.setCalls != 0 {
		t.Fatalf("expected one MSET and no SET, got mset=%d set=%d", mock.msetCalls, mock.setCalls)
	}
	for _, key := range []string{"shop:state:products", "shop:state:cart", "shop:state:purchases"} {
		if _, ok := mock.data[key]; !ok {
			t.Fatalf("missing %s in %v", key, mock.data)
		}
	}

	if err := store.SetMany(ctx, nil); err != nil || mock.msetCalls != 1 {
		t.Fatalf("empty batch should be a no-op, err=%v calls=%d", err, mock.msetCalls)
	}
}

func TestSetManyPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.msetErr = errors.New("READONLY replica")
	client := &Client{store: mock}

	if err := client.SetManyBytes(context.Background(), map[string][]byte{"cart": []byte("[]")}); err == nil {
		t.Fatal("expected error")
	}
}

func TestStateKey(t *testing.T) {
	client := &Client{}
	if got := client.StateKey("products"); got != "ecofinds:state:products" {
		t.Fatalf("unexpected default key %s", got)
	}
	client.namespace = "demo"
	if got := client.StateKey(" currentUser "); got != "demo:state:currentUser" {
		t.Fatalf("unexpected namespaced key %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
	if err := client.SetBytes(context.Background(), "k", nil); err == nil {
		t.Fatal("expected set error")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be nil, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 2, PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@cache:6380/3"})
	if err != nil {
		t.Fatalf("unexpected url error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 3 || opts.Password != "secret" {
		t.Fatalf("unexpected parsed options %+v", opts)
	}
}

type mockCmdable struct {
	data      map[string]string
	getErr    error
	msetErr   error
	setCalls  int
	msetCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.setCalls++
	m.store(key, value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) store(key string, value any) {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) MSet(ctx context.Context, values ...any) *redis.StatusCmd {
	m.msetCalls++
	if m.msetErr != nil {
		return redis.NewStatusResult("", m.msetErr)
	}
	for i := 0; i+1 < len(values); i += 2 {
		m.store(fmt.Sprint(values[i]), values[i+1])
	}
	return redis.NewStatusResult("OK", nil)
}
