package http

import (
	"strings"

	"softy/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pageParams reads limit and offset with the given default limit.
// Non-positive or malformed values fall back to the defaults.
func pageParams(limitRaw, offsetRaw string, def int) (limit, offset int) {
	limit = int(core.ParseNumber(limitRaw))
	if limit <= 0 {
		limit = def
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset = int(core.ParseNumber(offsetRaw))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// maxListLimit caps a single listing to roughly a year of days.
const maxListLimit = 366
