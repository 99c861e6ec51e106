// Package slug canonicalizes free-form text into URL-safe identifiers.
//
// A slug is lowercase, dash-separated ASCII with no leading, trailing, or
// consecutive dashes. The same canonicalization is applied to usernames,
// tag identifiers, and post identifiers, so Normalize must stay
// deterministic and stable: two deployments given the same input must
// derive the same slug.
//
// Normalization happens in a fixed order:
//
//  1. Every whitespace or underscore character becomes a dash.
//  2. Characters are transliterated to their closest ASCII equivalent
//     through a static table covering Latin-extended, Greek, and Cyrillic
//     letters plus a few decorated symbols. Characters with no table
//     entry pass through untouched.
//  3. Runs of dashes collapse to one.
//  4. Leading and trailing dashes are stripped.
//  5. The result is lowercased.
//
// Normalize is total and idempotent. It can return an empty string (for
// example, input made up entirely of Cyrillic soft and hard signs, which
// transliterate to nothing) — callers that need a non-empty identifier
// must treat that as a validation failure.
package slug
