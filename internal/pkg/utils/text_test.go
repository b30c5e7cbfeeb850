package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"默认值", 0, 0, 1, DefaultPageSize},
		{"超出上限", 3, 500, 3, MaxPageSize},
		{"正常值", 2, 20, 2, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s := NormalizePage(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p)
			assert.Equal(t, tt.wantSz, s)
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "你好", TruncateRunes("你好", 5))
	assert.Equal(t, "你好世…", TruncateRunes("你好世界和平", 3))
}

func TestGenerateRandomString(t *testing.T) {
	s, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = GenerateRandomString(0)
	assert.Error(t, err)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "#Web", "", "  ", "数据库"})
	assert.Equal(t, []string{"go", "web", "数据库"}, got)
	assert.Empty(t, NormalizeTags(nil))
}
