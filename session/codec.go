// Package session issues and verifies the signed session tokens carried in
// the session cookie and provides the fiber middleware that guards routes
// with them.
package session

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"

	"github.com/quillblog/quill/storage/model"
)

// MinSecretLen is the minimal length of a signing secret in bytes
const MinSecretLen = 32

// Codec creates and verifies HS256 signed JWTs that carry a user id and the
// issuance time. Tokens do not expire and there is no server side state; a
// token is valid as long as its signature matches the secret.
type Codec struct {
	secret []byte
	alg    jwa.SignatureAlgorithm
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret. The secret is copied and not
// changed afterwards.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, errors.Errorf("session secret must be at least %d bytes", MinSecretLen)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{
		secret: key,
		alg:    jwa.HS256(),
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for userID
func (c *Codec) Issue(userID uint) (string, error) {
	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatUint(uint64(userID), 10)).
		IssuedAt(c.now()).
		JwtID(uuid.NewString()).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "could not build session token")
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(c.alg, c.secret))
	if err != nil {
		return "", errors.Wrap(err, "could not sign session token")
	}
	return string(signed), nil
}

// Verify checks the token signature and returns the embedded user id.
// Every failure is reported as model.InvalidTokenError.
func (c *Codec) Verify(token string) (uint, error) {
	tok, err := jwt.ParseString(token, jwt.WithKey(c.alg, c.secret), jwt.WithValidate(true))
	if err != nil {
		return 0, model.InvalidTokenErrorFmt("invalid token: %s", err.Error())
	}
	sub, ok := tok.Subject()
	if !ok {
		return 0, model.InvalidTokenError("invalid token: no subject")
	}
	id, err := strconv.ParseUint(sub, 10, 0)
	if err != nil || id == 0 {
		return 0, model.InvalidTokenErrorFmt("invalid token: bad subject '%s'", sub)
	}
	return uint(id), nil
}
