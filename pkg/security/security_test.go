package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastArgon() *ArgonHash {
	a := New()
	a.Memory = 1024
	a.Iterations = 1
	return a
}

func TestArgonHash_RoundTrip(t *testing.T) {
	a := fastArgon()

	hash, err := a.Hash("hunter2hunter2")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=1024,t=1,p=2$")

	ok, err := a.Verify("hunter2hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonHash_UsesStoredParameters(t *testing.T) {
	hash, err := fastArgon().Hash("hunter2hunter2")
	require.NoError(t, err)

	ok, err := New().Verify("hunter2hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonHash_InvalidFormat(t *testing.T) {
	for _, e := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=1$m=1,t=1,p=1$YQ$YQ"} {
		_, err := New().Verify("x", e)
		assert.ErrorIs(t, err, ErrInvalidHash, e)
	}
}

func TestMakeVerificationToken(t *testing.T) {
	tok, err := MakeVerificationToken(time.Hour)
	require.NoError(t, err)

	assert.Len(t, tok.Raw, tokenSize*2)
	assert.Equal(t, HashToken(tok.Raw), tok.Hash)
	assert.NotEqual(t, tok.Raw, tok.Hash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Second)

	other, err := MakeVerificationToken(time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Raw, other.Raw)

	_, err = MakeVerificationToken(0)
	assert.Error(t, err)
}

func TestSession_SignAndParse(t *testing.T) {
	tok, err := SignSession("secret", 42, "sid-1", time.Hour)
	require.NoError(t, err)

	claims, err := ParseSession("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestSession_Rejects(t *testing.T) {
	tok, err := SignSession("secret", 42, "sid-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseSession("other-secret", tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	expired, err := SignSession("secret", 42, "sid-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSession("secret", expired)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = ParseSession("secret", "garbage")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
