package api

import (
	"encoding/json"
	"time"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
)

// SetValueRequest is the body of PUT /api/parameters/{slug}/value. Value is
// any JSON document; it is converted to the parameter's type before the
// write.
type SetValueRequest struct {
	Value json.RawMessage `json:"value" validate:"required"`
}

// HistoryEntry is one prior value of a parameter. Encrypted values are not
// returned.
type HistoryEntry struct {
	Value      string    `json:"value,omitempty"`
	Encrypted  bool      `json:"encrypted"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ImportResponse reports a bulk load.
type ImportResponse struct {
	Count int `json:"count"`
}

// ValidatorInfo names a validator that can be attached to parameters.
type ValidatorInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func newHistoryEntries(history []*domain.ParameterHistory) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(history))
	for _, h := range history {
		entry := HistoryEntry{ModifiedAt: h.ModifiedAt}
		if envelope.IsEncrypted(h.Value) {
			entry.Encrypted = true
		} else {
			entry.Value = h.Value
		}
		out = append(out, entry)
	}
	return out
}
