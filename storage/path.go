package storage

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stowage/stowage/interfaces"
)

// normalizePath turns a caller-supplied path into a canonical, traversal-free
// relative path. Backslashes are accepted as separators, empty and "."
// segments are dropped, and ".." resolves against preceding segments.
// Normalization is fail-closed: invalid UTF-8 or any Unicode control/format
// character is ErrInvalidPath, and a ".." that would ascend past the root is
// ErrPathTraversal rather than a silent fix.
//
// Only the local backend normalizes; the object backend uses keys verbatim.
func normalizePath(raw string) (string, error) {
	if !utf8.ValidString(raw) {
		return "", interfaces.ErrInvalidPath
	}

	raw = strings.ReplaceAll(raw, `\`, "/")

	for _, r := range raw {
		// Every assigned rune outside category C belongs to L, M, N, P, S
		// or Z, so this rejects control, format, surrogate, private-use and
		// unassigned code points in one test.
		if !unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z) {
			return "", interfaces.ErrInvalidPath
		}
	}

	segments := make([]string, 0, strings.Count(raw, "/")+1)
	for _, segment := range strings.Split(raw, "/") {
		switch segment {
		case "", ".":
			// dropped
		case "..":
			if len(segments) == 0 {
				return "", interfaces.ErrPathTraversal
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, segment)
		}
	}

	return strings.Join(segments, "/"), nil
}
