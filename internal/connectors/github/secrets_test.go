package github

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/box"
)

func TestSealSecret_RoundTrip(t *testing.T) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	require.NoError(t, err)

	sealed, err := sealSecret(base64.StdEncoding.EncodeToString(pub[:]), "sk_live_secret")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sealed)
	require.NoError(t, err)

	opened, ok := box.OpenAnonymous(nil, raw, pub, priv)
	require.True(t, ok, "sealed box must open with the matching private key")
	assert.Equal(t, "sk_live_secret", string(opened))
}

func TestSealSecret_InvalidKey(t *testing.T) {
	_, err := sealSecret("not-base64!!!", "value")
	assert.ErrorIs(t, err, ErrPublicKeyUnavailable)

	// Valid base64 but wrong length.
	short := base64.StdEncoding.EncodeToString([]byte("short"))
	_, err = sealSecret(short, "value")
	assert.ErrorIs(t, err, ErrPublicKeyUnavailable)
}
