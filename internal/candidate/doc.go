// Package candidate enumerates password guesses over a fixed alphabet in
// lexicographic product order: for a given length the first character varies
// slowest and the last character fastest.
package candidate
