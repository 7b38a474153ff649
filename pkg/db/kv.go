package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVStore persists raw values under a namespace in the kv_entries table.
type KVStore struct {
	client    *Client
	namespace string
	now       func() time.Time
}

// NewKVStore binds a KVStore to the given client and namespace.
func NewKVStore(client *Client, namespace string) (*KVStore, error) {
	if client == nil || client.conn == nil {
		return nil, fmt.Errorf("db client is required")
	}
	if namespace == "" {
		return nil, fmt.Errorf("namespace is required")
	}
	return &KVStore{client: client, namespace: namespace, now: time.Now}, nil
}

// Get returns the stored value; ok is false when the key was never written.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := s.client.conn.WithContext(ctx).
		Where("namespace = ? AND entry_key = ?", s.namespace, key).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read kv entry %q: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

// Set upserts a single key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	return upsert(s.client.conn.WithContext(ctx), s.entry(key, value))
}

// SetMany writes every key in one transaction.
func (s *KVStore) SetMany(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		for key, value := range values {
			if err := upsert(tx, s.entry(key, value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *KVStore) entry(key string, value []byte) *models.KVEntry {
	return &models.KVEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     string(value),
		UpdatedAt: s.now().UTC(),
	}
}

func upsert(tx *gorm.DB, entry *models.KVEntry) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("write kv entry %q: %w", entry.Key, err)
	}
	return nil
}
