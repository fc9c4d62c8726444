package domain

import (
	"fmt"
	"time"
)

// ParameterValidator attaches one validation rule to a parameter.
// Validators run in ascending Order, ties broken by ID.
type ParameterValidator struct {
	ID              int64          `json:"id"`
	ParameterID     int64          `json:"parameter_id"`
	ValidatorType   string         `json:"validator_type"`
	ValidatorParams map[string]any `json:"validator_params"`
	Order           int            `json:"order"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Params returns the validator params, never nil.
func (v *ParameterValidator) Params() map[string]any {
	if v.ValidatorParams == nil {
		return map[string]any{}
	}
	return v.ValidatorParams
}

func (v *ParameterValidator) String() string {
	return fmt.Sprintf("%s (%d)", v.ValidatorType, v.ParameterID)
}
