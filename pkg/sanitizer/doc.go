// Package sanitizer normalizes free-text patient messages before they reach
// the triage signals and the booking flow.
//
// All functions are idempotent and never fail: invalid input yields an empty
// string or an empty slice.
//
// Normalization includes:
//   - Messages: collapse whitespace, trim, drop control characters
//   - Matching form: lowercase, punctuation replaced by spaces, apostrophes kept ("can't")
//   - Tokens: whitespace split of the matching form
//   - Keywords: lowercase matching form, de-duplicated in slices
//   - Numbers: clamp scores to a closed range
package sanitizer
