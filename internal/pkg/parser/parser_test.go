package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownToHTML_SanitizesScripts(t *testing.T) {
	out, err := MarkdownToHTML("# 标题\n\n<script>alert(1)</script>\n\n**粗体**")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script")
	assert.Contains(t, out, "<strong>粗体</strong>")
	assert.Contains(t, out, "<h1")
}

func TestRender_PlainText(t *testing.T) {
	r, err := Render("Hello *world*\n\n- a & b\n- [link](https://example.com)")
	require.NoError(t, err)
	assert.Contains(t, r.HTML, "<em>world</em>")
	assert.Equal(t, "Hello world a & b link", r.Text)
	assert.False(t, strings.Contains(r.Text, "<"))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "a b", StripHTML("<p>a</p>\n<p>b</p>"))
	assert.Equal(t, "", StripHTML(""))
}
