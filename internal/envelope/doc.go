// Package envelope encrypts stored parameter values.
//
// An envelope is the string "enc1:" followed by the unpadded base64url encoding
// of a 24 byte nonce and the XChaCha20-Poly1305 sealed plaintext. The prefix lets
// any reader tell encrypted values from plain codec strings without consulting
// the parameter's flags. Keys are 32 random bytes, exchanged as unpadded base64url.
package envelope
