// Package secrets protects small values at rest.
//
// A Box is bound to one purpose (for example "email" or "totp") and owns two
// keys derived with HKDF-SHA-256 from a single 32-byte master key:
//
//   - an AES-256-GCM key for probabilistic encryption. Every call to Seal
//     draws a fresh nonce, so equal plaintexts produce different ciphertexts.
//   - an HMAC-SHA-256 key for Digest, a deterministic keyed hash that can back
//     a unique index and an equality lookup without revealing the value.
//
// Sealed values are base64 (standard encoding) of nonce || ciphertext || tag.
package secrets
