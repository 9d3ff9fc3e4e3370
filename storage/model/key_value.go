package model

import (
	"gorm.io/datatypes"
)

// Scopes and keys of the key value store
const (
	KeyValueScopeGlobal  = ""
	KeyValueScopeSession = "session"

	// KeyValueKeySecret holds the generated session signing secret when none
	// is configured
	KeyValueKeySecret = "secret"
)

// KeyValue is a JSON value addressed by (Scope, Key)
type KeyValue struct {
	Scope string         `gorm:"primaryKey;size:64" json:"scope"`
	Key   string         `gorm:"primaryKey;size:128" json:"key"`
	Value datatypes.JSON `json:"value"`

	CreatedAt int `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int `gorm:"autoUpdateTime" json:"updated_at"`
}

// KeyValueStore persists small pieces of server state, such as the session
// secret
type KeyValueStore interface {
	Get(scope, key string) (datatypes.JSON, error)
	Set(scope, key string, value datatypes.JSON) error
	// Delete does not fail for missing entries
	Delete(scope, key string) error
	// GetAs decodes the value into out and reports whether there was one
	GetAs(scope, key string, out any) (bool, error)
	SetAny(scope, key string, v any) error
}
