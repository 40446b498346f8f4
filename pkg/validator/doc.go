// Package validator expresses input checks as Rule values that pair a
// predicate with a translatable ValidationError.
//
// Apply runs every rule and aggregates failures, which suits request-shape
// validation. ApplyFirst stops at the first failing rule, which suits
// policies where the caller should receive exactly one actionable message.
package validator
