package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolish(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Hello.  ", "Hello."},
		{"capitalises first letter", "hello world", "Hello world"},
		{"capitalises after period", "one. two.  three", "One. Two. Three"},
		{"fixes teh", "Fix teh bug", "Fix the bug"},
		{"leaves words containing teh", "Tehran and tehee", "Tehran and tehee"},
		{"fixes definately", "It is definately done", "It is definitely done"},
		{"collapses whitespace", "A\n\nb\tc", "A b c"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Polish(tt.in))
		})
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML("# Plan\n\n- **one**\n- two\n")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Plan</h1>")
	assert.Contains(t, html, "<strong>one</strong>")
	assert.Contains(t, html, "<li>two</li>")
}
