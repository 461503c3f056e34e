package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/helixml/tasklist/domain/task"
	"github.com/helixml/tasklist/internal/database"
)

// KeyValueModel is a single stored blob.
type KeyValueModel struct {
	Name      string    `gorm:"column:name;primaryKey;size:255"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name.
func (KeyValueModel) TableName() string { return "key_values" }

// Entry is a stored value and the time it was last written.
type Entry struct {
	key       string
	value     []byte
	updatedAt time.Time
}

// NewEntry creates an Entry.
func NewEntry(key string, value []byte, updatedAt time.Time) Entry {
	return Entry{key: key, value: value, updatedAt: updatedAt}
}

// Key returns the storage key.
func (e Entry) Key() string { return e.key }

// Value returns the stored bytes.
func (e Entry) Value() []byte { return e.value }

// UpdatedAt returns when the entry was last written.
func (e Entry) UpdatedAt() time.Time { return e.updatedAt }

// KeyValueMapper maps between Entry and KeyValueModel.
type KeyValueMapper struct{}

// ToDomain converts a model to an Entry.
func (KeyValueMapper) ToDomain(m KeyValueModel) Entry {
	return NewEntry(m.Name, []byte(m.Value), m.UpdatedAt)
}

// ToModel converts an Entry to a model.
func (KeyValueMapper) ToModel(e Entry) KeyValueModel {
	return KeyValueModel{Name: e.key, Value: string(e.value), UpdatedAt: e.updatedAt}
}

// KeyValueStore implements task.Storage on a SQL database through GORM.
type KeyValueStore struct {
	database.Repository[Entry, KeyValueModel]
}

// NewKeyValueStore creates a KeyValueStore. The schema must already be migrated.
func NewKeyValueStore(db database.Database) KeyValueStore {
	return KeyValueStore{
		Repository: database.NewRepository[Entry, KeyValueModel](db, KeyValueMapper{}, "key value"),
	}
}

// Get returns the value stored under key.
func (s KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.FindOne(ctx, database.WithCondition("name", key))
	if errors.Is(err, database.ErrNotFound) {
		return nil, task.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}
	return entry.Value(), nil
}

// Set creates or replaces the value stored under key.
func (s KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	model := s.Mapper().ToModel(NewEntry(key, value, time.Now().UTC()))
	err := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Entries returns every stored entry ordered by key.
func (s KeyValueStore) Entries(ctx context.Context) ([]Entry, error) {
	return s.Find(ctx, database.WithOrderAsc("name"))
}
