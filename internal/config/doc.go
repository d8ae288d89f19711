// Package config loads zipcrack configuration from local and global YAML files
// with precedence rules. It is internal; CLI code maps flags and files into
// search configuration.
package config
