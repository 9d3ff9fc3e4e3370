package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/quillblog/quill/storage/model"
)

// KeyValue returns the key value store of s
func (s *Storage) KeyValue() *KeyValueStorage {
	return &KeyValueStorage{db: s.db}
}

// KeyValueStorage implements model.KeyValueStore on the key_values table
type KeyValueStorage struct {
	db *gorm.DB
}

// entry selects the row of (scope, key). A map condition is used so that the
// empty global scope is not dropped as a zero value.
func entry(scope, key string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(map[string]any{"scope": scope, "key": key})
	}
}

var upsertValue = clause.OnConflict{
	Columns:   []clause.Column{{Name: "scope"}, {Name: "key"}},
	DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
}

// Get returns the raw value of (scope, key) or nil if there is none. The
// column is scanned as bytes, since sqlite returns numeric JSON scalars as
// integers that datatypes.JSON cannot scan.
func (s *KeyValueStorage) Get(scope, key string) (datatypes.JSON, error) {
	var raw []byte
	row := s.db.Model(&model.KeyValue{}).Select("value").Scopes(entry(scope, key)).Row()
	switch err := row.Scan(&raw); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, errors.WithStack(err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// Set creates or replaces the value of (scope, key)
func (s *KeyValueStorage) Set(scope, key string, value datatypes.JSON) error {
	row := model.KeyValue{
		Scope: scope,
		Key:   key,
		Value: value,
	}
	return errors.WithStack(s.db.Clauses(upsertValue).Create(&row).Error)
}

// Delete removes (scope, key); a missing entry is not an error
func (s *KeyValueStorage) Delete(scope, key string) error {
	return errors.WithStack(s.db.Scopes(entry(scope, key)).Delete(&model.KeyValue{}).Error)
}

// GetAs decodes the value of (scope, key) into out
func (s *KeyValueStorage) GetAs(scope, key string, out any) (bool, error) {
	raw, err := s.Get(scope, key)
	if err != nil || raw == nil {
		return false, err
	}
	if err = json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "could not decode value of %s/%s", scope, key)
	}
	return true, nil
}

// SetAny encodes v and stores it at (scope, key)
func (s *KeyValueStorage) SetAny(scope, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "could not encode value of %s/%s", scope, key)
	}
	return s.Set(scope, key, raw)
}
