package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "plain text passes through",
			html:     "just text",
			expected: "just text",
		},
		{
			name:     "tags stripped",
			html:     "<p>Hello <b>world</b></p>",
			expected: "Hello world",
		},
		{
			name:     "script contents removed",
			html:     "<script>alert('x')</script>Visible",
			expected: "Visible",
		},
		{
			name:     "style contents removed",
			html:     "<style>body { color: red }</style>Visible",
			expected: "Visible",
		},
		{
			name:     "entities decoded",
			html:     "a &amp; b &quot;c&quot; isn&#39;t",
			expected: "a & b \"c\" isn't",
		},
		{
			name:     "line breaks preserved",
			html:     "line one<br>line two",
			expected: "line one\nline two",
		},
		{
			name:     "excessive newlines collapsed",
			html:     "<p>one</p><p>two</p>",
			expected: "one\n\ntwo",
		},
		{
			name:     "empty input",
			html:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, htmlToText(tt.html))
		})
	}
}

func TestRemoveTagsWithContent(t *testing.T) {
	assert.Equal(t, "keep", removeTagsWithContent("<script>drop</script>keep", "script"))
	assert.Equal(t, "ab", removeTagsWithContent("a<style>x</style>b", "style"))
	// Unclosed tag is left alone rather than eating the rest of the body
	assert.Equal(t, "<script>rest", removeTagsWithContent("<script>rest", "script"))
}
