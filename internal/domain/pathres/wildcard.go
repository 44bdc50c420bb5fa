package pathres

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

// EnumerateFunc lists the absolute file paths directly under dir. The
// expander is parameterized over it so the exact same matcher powers the
// real and the virtual provider.
type EnumerateFunc func(dir string) ([]string, error)

// HasWildcard reports whether pattern contains * or ? in any segment.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}

// ExpandWildcards expands * and ? in the final path segment of pattern.
//
// A pattern without wildcards is returned unchanged as a single-element
// list, even when the path does not exist; existence is the caller's
// concern. Otherwise everything before the final separator is treated as a
// literal directory, enumerated through enumerate, and each entry's
// basename is matched case-insensitively against the pattern. Matches are
// anchored at both ends and neither wildcard crosses a separator. A
// wildcard in a non-final segment is not special: the directory portion is
// passed to enumerate literally, so such a directory simply does not exist.
//
// The returned list may be empty; source-expanding callers translate that
// into a file-not-found failure.
func ExpandWildcards(pattern string, enumerate EnumerateFunc) ([]string, error) {
	if !HasWildcard(pattern) {
		return []string{pattern}, nil
	}

	dir := filepath.Dir(pattern)
	segment := filepath.Base(pattern)

	names, err := enumerate(dir)
	if err != nil {
		return nil, err
	}

	folded := Fold(segment)
	matched := make([]string, 0, len(names))
	for _, name := range names {
		ok, err := doublestar.Match(folded, Fold(filepath.Base(name)))
		if err != nil {
			return nil, fmt.Errorf("bad wildcard pattern %q: %w", segment, err)
		}
		if ok {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// Fold normalizes a string for case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}
