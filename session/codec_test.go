package session

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillblog/quill/storage/model"
)

var testSecret = bytes.Repeat([]byte("k"), MinSecretLen)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret)
	require.NoError(t, err)
	return c
}

func isInvalidToken(err error) bool {
	_, ok := errors.Cause(err).(model.InvalidTokenError)
	return ok
}

func TestNewCodecRejectsShortSecret(t *testing.T) {
	_, err := NewCodec([]byte("short"))
	assert.Error(t, err)
}

func TestIssueVerify(t *testing.T) {
	c := newTestCodec(t)
	token, err := c.Issue(42)
	require.NoError(t, err)

	id, err := c.Verify(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	other, err := c.Issue(42)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestVerifyRejects(t *testing.T) {
	c := newTestCodec(t)
	token, err := c.Issue(1)
	require.NoError(t, err)

	otherCodec, err := NewCodec(bytes.Repeat([]byte("x"), MinSecretLen))
	require.NoError(t, err)
	_, err = otherCodec.Verify(token)
	assert.True(t, isInvalidToken(err), "foreign secret")

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	_, err = c.Verify(tampered)
	assert.True(t, isInvalidToken(err), "tampered payload")

	_, err = c.Verify("")
	assert.True(t, isInvalidToken(err), "empty")
	_, err = c.Verify("not.a.token")
	assert.True(t, isInvalidToken(err), "garbage")
}

func TestVerifyRejectsBadSubject(t *testing.T) {
	c := newTestCodec(t)
	for _, sub := range []string{"", "alice", "0", "-1"} {
		b := jwt.NewBuilder()
		if sub != "" {
			b = b.Subject(sub)
		}
		tok, err := b.Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256(), testSecret))
		require.NoError(t, err)
		_, err = c.Verify(string(signed))
		assert.True(t, isInvalidToken(err), "subject %q", sub)
	}
}

func TestNewCodecCopiesSecret(t *testing.T) {
	secret := bytes.Repeat([]byte("s"), MinSecretLen)
	c, err := NewCodec(secret)
	require.NoError(t, err)
	token, err := c.Issue(3)
	require.NoError(t, err)

	secret[0] = 'X'
	id, err := c.Verify(token)
	require.NoError(t, err)
	assert.EqualValues(t, 3, id)
}
