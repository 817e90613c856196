package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
	assert.NotEmpty(t, GetCommit())
	assert.NotEmpty(t, GetBuildDate())
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"v1.2.3", true},
		{"1.0.0", true},
		{"v1.2.3-rc.1", false},
		{"dev", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelease(tt.version))
		})
	}
	assert.False(t, IsRelease(), "test binaries are not release builds")
}

func TestInfo(t *testing.T) {
	info := Info()
	assert.Contains(t, info, "sequestra dev")
	assert.Contains(t, info, "commit none")
	assert.True(t, strings.HasSuffix(info, "[development build]"))
}
