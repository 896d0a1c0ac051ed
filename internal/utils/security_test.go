package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{name: "empty token", token: "", expected: "[EMPTY]"},
		{name: "short token", token: "abcd", expected: "****"},
		{name: "eight chars", token: "abcdefgh", expected: "********"},
		{name: "medium token", token: "abcdefghijkl", expected: "abcd****ijkl"},
		{name: "jwt-like token", token: "eyJhbGciOi.payload.sig1", expected: "eyJh***************sig1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskToken(tt.token))
		})
	}
}
