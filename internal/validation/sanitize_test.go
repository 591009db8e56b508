package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOp(t *testing.T) {
	cases := []struct {
		op, in, want string
	}{
		{"trim", "  a b  ", "a b"},
		{"lower", "AbC", "abc"},
		{"upper", "AbC", "ABC"},
		{"strip_control", "a\x00b\x07c\n\td", "abc\n\td"},
		{"escape_html", `<b>"x"</b>`, "&lt;b&gt;&#34;x&#34;&lt;/b&gt;"},
		{"collapse_space", "  a   b \t c ", "a b c"},
		{"unknown", "as-is", "as-is"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, applyOp(tc.op, tc.in), tc.op)
	}
}

func TestValues_Helpers(t *testing.T) {
	v := Values{"a": "x", "n": int64(3), "b": true}

	assert.Equal(t, "x", v.String("a"))
	assert.Equal(t, "3", v.String("n"))
	assert.Equal(t, "", v.String("missing"))

	n, ok := v.Int("n")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	c := v.Clone()
	c.Delete("a", "n")
	c.Set("z", "1")
	assert.True(t, v.Has("a"), "clone must not alias")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("z"))
}
