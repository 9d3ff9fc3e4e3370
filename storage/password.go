package storage

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

var b64 = base64.RawStdEncoding

func defaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	}
}

func (p Argon2idParams) orDefault() Argon2idParams {
	if p.Time == 0 {
		return defaultArgon2idParams()
	}
	return p
}

// phcHash is a decoded argon2id hash in PHC string format:
// $argon2id$v=19$m=<KiB>,t=<time>,p=<threads>$<salt>$<key>
type phcHash struct {
	params Argon2idParams
	salt   []byte
	key    []byte
}

func newPHCHash(password string, p Argon2idParams) (*phcHash, error) {
	p = p.orDefault()
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.WithStack(err)
	}
	return &phcHash{
		params: p,
		salt:   salt,
		key:    argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, p.KeyLen),
	}, nil
}

func parsePHCHash(encoded string) (*phcHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return nil, errors.New("not an argon2id hash")
	}
	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, errors.Errorf("unsupported argon2 version '%s'", fields[2])
	}
	var h phcHash
	if _, err := fmt.Sscanf(
		fields[3], "m=%d,t=%d,p=%d", &h.params.MemoryKiB, &h.params.Time, &h.params.Parallelism,
	); err != nil {
		return nil, errors.Wrap(err, "invalid argon2id parameters")
	}
	var err error
	if h.salt, err = b64.DecodeString(fields[4]); err != nil {
		return nil, errors.Wrap(err, "invalid argon2id salt")
	}
	if h.key, err = b64.DecodeString(fields[5]); err != nil {
		return nil, errors.Wrap(err, "invalid argon2id key")
	}
	h.params.SaltLen = uint32(len(h.salt))
	h.params.KeyLen = uint32(len(h.key))
	return &h, nil
}

func (h *phcHash) String() string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s", argon2.Version,
		h.params.MemoryKiB, h.params.Time, h.params.Parallelism,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key),
	)
}

// matches reports whether password derives to the stored key
func (h *phcHash) matches(password string) bool {
	p := h.params
	key := argon2.IDKey([]byte(password), h.salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(key, h.key) == 1
}

// outdated reports whether the hash was created with other parameters than p
func (h *phcHash) outdated(p Argon2idParams) bool {
	return h.params != p.orDefault()
}
