package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	defer func(v, sha, bt string) { Version, GitSHA, BuildTime = v, sha, bt }(Version, GitSHA, BuildTime)

	assert.Equal(t, "trajectory dev (unknown, built unknown)", String())

	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2026-01-02T03:04:05Z"
	assert.Equal(t, "trajectory 1.2.0 (abc1234, built 2026-01-02T03:04:05Z)", String())
}
