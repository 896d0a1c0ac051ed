package contextutils

import (
	"strings"
)

// MaskToken masks a bearer credential for logging purposes.
// Only the first 4 and last 4 characters remain visible.
func MaskToken(token string) string {
	if token == "" {
		return "[EMPTY]"
	}

	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}

	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
