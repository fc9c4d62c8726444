package envelope

import (
	"errors"
	"fmt"

	"github.com/phrazzld/paramstore/internal/domain"
)

var (
	// ErrNoKey is returned when encryption is needed but no key is configured.
	ErrNoKey = fmt.Errorf("%w: no encryption key configured", domain.ErrConfiguration)

	// ErrInvalidKey is returned for a key that is not 32 bytes of base64url.
	ErrInvalidKey = fmt.Errorf("%w: invalid encryption key", domain.ErrConfiguration)

	// ErrInvalidToken is returned when an envelope is malformed or was sealed
	// under a different key.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrDecryption)

	errNotEnvelope = errors.New("missing envelope prefix")
)
