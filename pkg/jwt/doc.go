// Package jwt signs and verifies HS256 JSON Web Tokens with
// github.com/golang-jwt/jwt/v5 and carries parsed claims through
// request contexts.
//
// Service pins the signing method, so tokens signed with "none" or an
// asymmetric algorithm are rejected before any claim is read. Expiry is
// mandatory and, when the service has an issuer, the "iss" claim must
// match it.
package jwt
