package domain

import (
	"fmt"
	"time"
)

// ParameterHistory records the raw value a parameter held before a write replaced it.
// Entries are append-only and listed newest first.
type ParameterHistory struct {
	ID          int64     `json:"id"`
	ParameterID int64     `json:"parameter_id"`
	Value       string    `json:"value"`
	ModifiedAt  time.Time `json:"modified_at"`
}

func (h *ParameterHistory) String() string {
	return fmt.Sprintf("%s - %s", h.Value, h.ModifiedAt.Format(time.RFC3339))
}
