// Package service implements the parameter façade on top of the store.
//
// ParameterService combines the codec, the validator registry and the
// encryption keyring on every read and write:
//
//   - Reads load the raw value, open it when it carries the envelope prefix,
//     and decode it as the requested type.
//   - Writes check the Go type of the input, run attached validators in order,
//     encode, encrypt when enable_cypher is set, append the prior raw value to
//     the history ledger when enable_history is set and the value changed, and
//     persist. The whole write is one transaction.
//
// Bulk import and export (Load, Dump) and key rotation (PrepareRotation,
// ApplyRotation) live here as well, as they share the same write path.
package service
