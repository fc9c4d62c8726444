// Package codec maps between the canonical string stored for a parameter and the
// Go value of its declared type.
//
// Reading is lenient: Decode parses whatever string is stored. Writing is strict:
// Check and Encode only accept the exact Go type documented for each tag below.
//
//	INT  int64 (any signed or unsigned integer accepted on write)
//	STR  string
//	FLT  float64 (float32 accepted on write)
//	DCL  decimal.Decimal
//	JSN  any JSON-serializable value
//	BOO  bool
//	DAT  civil.Date
//	DTM  time.Time
//	TIM  civil.Time (whole seconds)
//	URL  string
//	EML  string
//	LST  []string
//	DCT  map[string]any
//	PTH  Path
//	DUR  time.Duration
//	PCT  float64 (integers accepted on write), 0 to 100 inclusive
package codec
