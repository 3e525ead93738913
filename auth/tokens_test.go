package auth

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKey(0x01), DefaultTokenTTL)
	require.NoError(t, err)

	token, err := svc.Issue("lemmy")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "lemmy", username)
}

func TestTokenRejectsWrongKey(t *testing.T) {
	issuer, err := NewTokenService(testKey(0x01), DefaultTokenTTL)
	require.NoError(t, err)
	verifier, err := NewTokenService(testKey(0x02), DefaultTokenTTL)
	require.NoError(t, err)

	token, err := issuer.Issue("lemmy")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService(testKey(0x01), DefaultTokenTTL)
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	assert.Error(t, err)

	_, err = svc.Verify("")
	assert.Error(t, err)
}

func TestTokenExpires(t *testing.T) {
	svc, err := NewTokenService(testKey(0x01), time.Nanosecond)
	require.NoError(t, err)

	token, err := svc.Issue("lemmy")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestNewTokenServiceRejectsShortKey(t *testing.T) {
	_, err := NewTokenService([]byte("too short"), DefaultTokenTTL)
	assert.Error(t, err)
}
