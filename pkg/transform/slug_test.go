package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/htmlmd/pkg/transform"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"C++ & Go", "c-go"},
		{"Ünïcode Tëst", "ünïcode-tëst"},
		{"Version 2.0", "version-2-0"},
		{"!!!", "heading"},
		{"", "heading"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, transform.Slug(tt.in))
		})
	}
}

func TestSlugger(t *testing.T) {
	t.Parallel()

	s := transform.NewSlugger()
	assert.Equal(t, "a", s.Unique("a"))
	assert.Equal(t, "a-2", s.Unique("a"))
	assert.Equal(t, "a-3", s.Unique("a"))
	assert.Equal(t, "a-2-2", s.Unique("a-2"))

	assert.Equal(t, "b", s.Reserve("b"))
	assert.Equal(t, "b-2", s.Unique("b"))
	assert.Equal(t, "b", s.Reserve("b"), "explicit ids are kept even when repeated")
}
