package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleUpdate struct {
	Status   string `validate:"required,oneof=neu triaged geloest"`
	Priority string `validate:"omitempty,oneof=critical high medium low"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sampleUpdate{Status: "neu", Priority: "high"}))
	require.NoError(t, ValidateStruct(sampleUpdate{Status: "geloest"}))

	err := ValidateStruct(sampleUpdate{Status: "unknown", Priority: "urgent"})
	require.Error(t, err)
	assert.Equal(t, ErrorCodeValidationFailed, GetErrorCode(err))
	assert.Contains(t, err.Error(), "Status failed on oneof")
	assert.Contains(t, err.Error(), "Priority failed on oneof")
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("admin@fehradvice.com"))
	assert.True(t, IsValidEmail("user+tag@example.co.uk"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("invalid-email"))
	assert.False(t, IsValidEmail("user@"))
	assert.False(t, IsValidEmail("user name@example.com"))
}
