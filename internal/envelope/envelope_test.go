package envelope_test

import (
	"strings"
	"testing"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T) envelope.Key {
	t.Helper()
	k, err := envelope.GenerateKey()
	require.NoError(t, err)
	return k
}

func TestEncryptDecrypt(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	tests := []struct {
		name      string
		plaintext string
	}{
		{"empty", ""},
		{"ascii", "postgres://user:pass@db/app"},
		{"unicode", "pässwörd ✓"},
		{"long", strings.Repeat("x", 4096)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			token, err := envelope.Encrypt(tc.plaintext, key)
			require.NoError(t, err)
			assert.True(t, envelope.IsEncrypted(token))
			assert.True(t, strings.HasPrefix(token, envelope.Prefix))
			if tc.plaintext != "" {
				assert.NotContains(t, token, tc.plaintext)
			}

			got, err := envelope.Decrypt(token, key)
			require.NoError(t, err)
			assert.Equal(t, tc.plaintext, got)
		})
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	a, err := envelope.Encrypt("same", key)
	require.NoError(t, err)
	b, err := envelope.Encrypt("same", key)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecryptFailures(t *testing.T) {
	t.Parallel()

	key := mustKey(t)
	other := mustKey(t)
	token, err := envelope.Encrypt("secret", key)
	require.NoError(t, err)

	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	tests := []struct {
		name  string
		token string
		key   envelope.Key
	}{
		{"wrong key", token, other},
		{"tampered", string(tampered), key},
		{"no prefix", "secret", key},
		{"bad base64", envelope.Prefix + "!!!", key},
		{"too short", envelope.Prefix + "AAAA", key},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := envelope.Decrypt(tc.token, tc.key)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, envelope.ErrInvalidToken)
			assert.ErrorIs(t, err, domain.ErrDecryption)
		})
	}
}

func TestParseKey(t *testing.T) {
	t.Parallel()

	key := mustKey(t)

	t.Run("round trip", func(t *testing.T) {
		parsed, err := envelope.ParseKey(key.String())
		require.NoError(t, err)
		assert.True(t, parsed.Equal(key))
	})

	t.Run("padding and whitespace tolerated", func(t *testing.T) {
		parsed, err := envelope.ParseKey("  " + key.String() + "=\n")
		require.NoError(t, err)
		assert.True(t, parsed.Equal(key))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := envelope.ParseKey("  ")
		assert.ErrorIs(t, err, envelope.ErrNoKey)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	for name, input := range map[string]string{
		"not base64": "not a key!",
		"too short":  "c2hvcnQ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := envelope.ParseKey(input)
			assert.ErrorIs(t, err, envelope.ErrInvalidKey)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}

	assert.False(t, key.Equal(mustKey(t)))
}

func TestKeyring(t *testing.T) {
	t.Parallel()

	t.Run("without key", func(t *testing.T) {
		ring, err := envelope.NewKeyring("")
		require.NoError(t, err)
		assert.False(t, ring.Configured())

		_, err = ring.Encrypt("x")
		assert.ErrorIs(t, err, envelope.ErrNoKey)
		_, err = ring.Decrypt(envelope.Prefix + "AAAA")
		assert.ErrorIs(t, err, envelope.ErrNoKey)
	})

	t.Run("invalid key", func(t *testing.T) {
		ring, err := envelope.NewKeyring("garbage")
		assert.Nil(t, ring)
		assert.ErrorIs(t, err, envelope.ErrInvalidKey)
	})

	t.Run("configured", func(t *testing.T) {
		key := mustKey(t)
		ring, err := envelope.NewKeyring(key.String())
		require.NoError(t, err)
		assert.True(t, ring.Configured())

		token, err := ring.Encrypt("value")
		require.NoError(t, err)
		plain, err := envelope.NewKeyringFromKey(key).Decrypt(token)
		require.NoError(t, err)
		assert.Equal(t, "value", plain)
	})

	t.Run("nil keyring", func(t *testing.T) {
		var ring *envelope.Keyring
		assert.False(t, ring.Configured())
		_, err := ring.Key()
		assert.ErrorIs(t, err, envelope.ErrNoKey)
	})
}

func TestIsEncrypted(t *testing.T) {
	t.Parallel()

	assert.False(t, envelope.IsEncrypted(""))
	assert.False(t, envelope.IsEncrypted("plain value"))
	assert.False(t, envelope.IsEncrypted("ENC1:abc"))
	assert.True(t, envelope.IsEncrypted("enc1:abc"))
}
