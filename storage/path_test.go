package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stowage/stowage/interfaces"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain relative path",
			input:    "a/b.txt",
			expected: "a/b.txt",
		},
		{
			name:     "backslash separators",
			input:    `a\b\c.txt`,
			expected: "a/b/c.txt",
		},
		{
			name:     "mixed separators",
			input:    `a\b/c.txt`,
			expected: "a/b/c.txt",
		},
		{
			name:     "leading slash dropped",
			input:    "/a/b.txt",
			expected: "a/b.txt",
		},
		{
			name:     "trailing slash dropped",
			input:    "a/b/",
			expected: "a/b",
		},
		{
			name:     "empty segments collapsed",
			input:    "a//b///c",
			expected: "a/b/c",
		},
		{
			name:     "dot segments dropped",
			input:    "./a/./b/.",
			expected: "a/b",
		},
		{
			name:     "dotdot pops previous segment",
			input:    "a/b/../c.txt",
			expected: "a/c.txt",
		},
		{
			name:     "dotdot back to root",
			input:    "a/..",
			expected: "",
		},
		{
			name:     "pop then rebuild",
			input:    "a/../b/c",
			expected: "b/c",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "unicode letters pass",
			input:    "héllo/wörld.txt",
			expected: "héllo/wörld.txt",
		},
		{
			name:     "spaces pass",
			input:    "my files/report v2.txt",
			expected: "my files/report v2.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizePath(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizePath_Traversal(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bare dotdot", input: ".."},
		{name: "leading dotdot", input: "../a"},
		{name: "pops past root", input: "a/../../b"},
		{name: "classic traversal", input: "../etc/passwd"},
		{name: "backslash traversal", input: `..\..\etc\passwd`},
		{name: "absolute traversal", input: "/a/../../b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizePath(tt.input)
			assert.True(t, errors.Is(err, interfaces.ErrPathTraversal), "expected ErrPathTraversal, got %v", err)
			assert.Empty(t, result)
		})
	}
}

func TestNormalizePath_InvalidCharacters(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "nul byte", input: "a/b\x00c"},
		{name: "newline", input: "a/b\nc"},
		{name: "tab", input: "a\tb"},
		{name: "escape", input: "a\x1bc"},
		{name: "delete", input: "a\x7fc"},
		{name: "zero width space", input: "a​b"},
		{name: "unassigned code point", input: "a͸b"},
		{name: "invalid utf8", input: "a/" + string([]byte{0xff, 0xfe})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizePath(tt.input)
			assert.True(t, errors.Is(err, interfaces.ErrInvalidPath), "expected ErrInvalidPath, got %v", err)
			assert.Empty(t, result)
		})
	}
}

func TestNormalizePath_Idempotent(t *testing.T) {
	inputs := []string{
		"a/b.txt",
		`a\b\c.txt`,
		"./a//b/../c",
		"/deep/нested/päth/file.bin",
	}

	for _, input := range inputs {
		first, err := normalizePath(input)
		assert.NoError(t, err)

		second, err := normalizePath(first)
		assert.NoError(t, err)
		assert.Equal(t, first, second)

		// Normalized output never carries separators other than "/" and never
		// retains dot segments.
		assert.NotContains(t, first, `\`)
		for _, segment := range strings.Split(first, "/") {
			assert.NotEqual(t, ".", segment)
			assert.NotEqual(t, "..", segment)
		}
	}
}
