// Package zipcrack provides the command-line interface for the zipcrack tool.
// It parses flags, merges them with local and global configuration files,
// runs the password search and reports the result.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/redactyl/zipcrack/cmd/zipcrack"
//	func main() { zipcrack.Execute() }
package zipcrack
