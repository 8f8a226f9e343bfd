package app

import "strings"

const maxTracedQueryLength = 512

// formatDBQueryForTrace collapses whitespace and caps span statement length.
func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	cut := maxTracedQueryLength
	for cut > 0 && !isRuneStart(normalized[cut]) {
		cut--
	}
	return normalized[:cut] + "..."
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
