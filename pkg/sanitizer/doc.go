// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent and never fails: input that cannot be
// normalized comes back empty so the validator rejects it.
//
//   - Phones: E.164, parsed as Moroccan numbers unless they carry a country code
//   - Names and cities: trimmed with inner whitespace collapsed
//   - Skills and languages: lowercased, deduplicated
//   - URLs: https, lowercase host, tracking parameters dropped
package sanitizer
