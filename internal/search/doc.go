// Package search runs the brute-force password search against a single
// archive. A Searcher walks candidate lengths from MinLength to MaxLength,
// tests each candidate with archive.Archive.Test, stops at the first
// accepted password and then extracts the archive with it.
//
// Wrong guesses are skipped silently. Attempts that fail because the
// archive is damaged or the disk misbehaves abort the search with an error
// wrapping ErrAttemptFailed, so they are never mistaken for a miss.
package search
