// Package requestid tags every request with a correlation ID.
//
// Middleware reuses a well-formed X-Request-ID header from the client or
// generates a UUIDv7, stores it in the context and echoes it in the response.
// LoggerExtractor adds the ID to every log record written with that context.
package requestid
