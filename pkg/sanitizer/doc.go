// Package sanitizer normalizes user-supplied text before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. They never fail; input that normalizes to nothing comes
// back as an empty string and is left for the validator to reject.
//
// Normalization includes:
//   - Names: Unicode NFC, control characters dropped, whitespace collapsed
//   - Emails: trimmed and lower-cased
//   - Notes: Unicode NFC, control characters other than newline and tab dropped
//   - Slugs: diacritics folded, lower-cased, runs of other characters become "-"
package sanitizer
