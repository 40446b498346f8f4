// Package sanitizer normalises user-supplied identifiers before they are
// validated, hashed or stored.
package sanitizer
