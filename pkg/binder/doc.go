// Package binder decodes HTTP request bodies into typed values for
// handler.Wrap.
//
// JSON accepts only application/json, caps the body at DefaultMaxJSONSize,
// rejects unknown fields and trailing data, and trims surrounding whitespace
// from every decoded string.
package binder
