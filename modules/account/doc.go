// Package account exposes the authentication service over HTTP.
//
// Routes:
//
//	POST /register          create an account
//	POST /login             password step; returns a full or a pending token
//	POST /verify-mfa        second factor step (pending or full token)
//	POST /resend-mfa        send a fresh email code (pending or full token)
//	POST /setup-mfa         enroll a TOTP authenticator (full token)
//	POST /setup-mfa/email   switch to emailed codes (full token)
//	GET  /me                current profile (full token)
//
// Every error is rendered by the handler package's error translator;
// ErrorClassifier maps auth.Error kinds to status codes.
package account
