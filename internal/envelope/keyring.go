package envelope

// Keyring holds the configured key. A keyring without a key is valid until
// something needs to encrypt or decrypt, at which point ErrNoKey is returned.
type Keyring struct {
	key        Key
	configured bool
}

// NewKeyring parses encoded. An empty string yields a keyring with no key.
func NewKeyring(encoded string) (*Keyring, error) {
	if encoded == "" {
		return &Keyring{}, nil
	}
	k, err := ParseKey(encoded)
	if err != nil {
		return nil, err
	}
	return &Keyring{key: k, configured: true}, nil
}

// NewKeyringFromKey wraps an already parsed key.
func NewKeyringFromKey(k Key) *Keyring {
	return &Keyring{key: k, configured: true}
}

// Configured reports whether a key is present.
func (r *Keyring) Configured() bool {
	return r != nil && r.configured
}

// Key returns the configured key.
func (r *Keyring) Key() (Key, error) {
	if !r.Configured() {
		return Key{}, ErrNoKey
	}
	return r.key, nil
}

// Encrypt seals plaintext with the configured key.
func (r *Keyring) Encrypt(plaintext string) (string, error) {
	k, err := r.Key()
	if err != nil {
		return "", err
	}
	return Encrypt(plaintext, k)
}

// Decrypt opens token with the configured key.
func (r *Keyring) Decrypt(token string) (string, error) {
	k, err := r.Key()
	if err != nil {
		return "", err
	}
	return Decrypt(token, k)
}
