package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion_Variables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, BuildTime)
}

func TestString(t *testing.T) {
	oldVersion, oldCommit, oldBuild := Version, Commit, BuildTime
	t.Cleanup(func() { Version, Commit, BuildTime = oldVersion, oldCommit, oldBuild })

	Version, Commit, BuildTime = "v1.2.3", "abc123", "2024-03-05"

	assert.Equal(t, "v1.2.3 (commit abc123, built 2024-03-05)", String())
}
