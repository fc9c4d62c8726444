// Package domain contains the parameter store's entities: typed parameters,
// their attached validators and their history ledger, together with the closed
// set of value types, slug derivation and the error taxonomy shared by every layer.
package domain
