// Package archive opens password-protected archives and answers two separate
// questions about them: does a password decrypt every encrypted member
// (Test), and write the members to disk with a known password (Extract).
//
// Test never touches the filesystem outside the archive itself, so failed
// guesses cannot leave partial files behind. Each attempt returns a tagged
// Attempt so callers can tell a rejected password apart from a damaged
// archive or a failing disk.
package archive
