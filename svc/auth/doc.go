// Package auth implements credential verification with a mandatory second
// factor.
//
// Registration stores a bcrypt hash of the password and the email address
// sealed with AES-GCM; logins find the account through a keyed digest of the
// normalized address. Accounts either have no second factor, an emailed
// one-time code, or a TOTP authenticator. Logging in to an account with a
// second factor yields a short-lived pending token that only the verification
// step accepts; a successful verification (or a login without MFA) yields a
// full token.
//
// The Gate resolves a bearer token into one of three states (unauthenticated,
// pending_mfa, authenticated) and its middleware rejects requests whose state
// is not trusted enough for the route. Every failure is an *Error carrying a
// Kind, which the HTTP layer maps to a status code.
package auth
