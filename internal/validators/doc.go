// Package validators resolves the validation rules that can be attached to a parameter.
//
// Eleven rules are built in. Further rules are compiled into the binary, registered
// in a Library under dotted paths, and enabled by configuration that maps a short
// name to such a path. A Registry combines both tables and caches custom imports.
package validators
