// Package email delivers transactional messages through a pluggable
// EmailSender. Implementations exist for Postmark, SendGrid and Mailgun, plus
// a development sender that writes each message to disk instead of sending
// it. NewFromConfig picks one based on Config.Provider.
package email
