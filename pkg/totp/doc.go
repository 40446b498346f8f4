// Package totp provisions and verifies RFC 6238 time-based one-time
// passwords on top of github.com/pquerna/otp.
//
// Secrets are 160-bit, base32 encoded without padding, and come with an
// otpauth:// URI ready to be rendered as a QR code for authenticator apps.
// Validate is a pure function of secret, code and time; it accepts codes
// from adjacent time steps within Options.Skew to absorb clock drift.
package totp
