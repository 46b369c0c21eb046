package handlers

import (
	"strconv"
)

// parseLimit reads a ?limit= value, falling back to def and capping at max.
func parseLimit(raw string, def, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
