// Package utils holds small helpers shared by the config, store and CLI
// packages: atomic file writes, executable lookup and list parsing.
package utils

import "strings"

// SplitAndTrim splits s on sep, trims each element and drops the blank ones.
// "Low, ,High," gives [Low High].
func SplitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
