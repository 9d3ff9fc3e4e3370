package storage

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/quillblog/quill/storage/model"
)

// sessionSecretLen is the number of random bytes generated for a session
// signing secret
const sessionSecretLen = 64

// notFoundOr returns nf if err is a gorm.ErrRecordNotFound and err (with a
// stack) otherwise
func notFoundOr(err error, nf model.NotFoundError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return errors.WithStack(err)
}

// GetSessionSecret returns the persisted session signing secret or nil if
// none was stored yet
func GetSessionSecret(kvStorage model.KeyValueStore) ([]byte, error) {
	if kvStorage == nil {
		return nil, errors.New("key value store is not set")
	}
	var encoded string
	found, err := kvStorage.GetAs(model.KeyValueScopeSession, model.KeyValueKeySecret, &encoded)
	if err != nil || !found {
		return nil, err
	}
	secret, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "stored session secret is not valid base64")
	}
	return secret, nil
}

// SetSessionSecret persists the session signing secret
func SetSessionSecret(kvStorage model.KeyValueStore, secret []byte) error {
	if kvStorage == nil {
		return errors.New("key value store is not set")
	}
	return kvStorage.SetAny(
		model.KeyValueScopeSession, model.KeyValueKeySecret, base64.RawStdEncoding.EncodeToString(secret),
	)
}

// LoadOrCreateSessionSecret returns the persisted session secret; if there is
// none a random one is generated and stored, so sessions survive restarts
func LoadOrCreateSessionSecret(kvStorage model.KeyValueStore) ([]byte, error) {
	secret, err := GetSessionSecret(kvStorage)
	if err != nil {
		return nil, err
	}
	if len(secret) > 0 {
		return secret, nil
	}
	secret = make([]byte, sessionSecretLen)
	if _, err = rand.Read(secret); err != nil {
		return nil, errors.WithStack(err)
	}
	if err = SetSessionSecret(kvStorage, secret); err != nil {
		return nil, err
	}
	return secret, nil
}
