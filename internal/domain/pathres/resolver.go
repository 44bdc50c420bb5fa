// Package pathres resolves instruction paths: placeholder substitution,
// separator normalization, root joining and wildcard expansion. The same
// expansion runs over the real and the virtual provider so a dry run and a
// real run see identical source lists.
package pathres

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// The closed placeholder set. Tokens are matched case-insensitively;
// any other <<...>> token is ErrUnknownPlaceholder.
const (
	PlaceholderModDir   = "<<modDirectory>>"
	PlaceholderGameDir  = "<<kotorDirectory>>"
	PlaceholderTempDir  = "%temp%"
)

// Errors for path resolution.
var (
	// ErrUnknownPlaceholder indicates a reserved <<...>> token outside the
	// closed placeholder set.
	ErrUnknownPlaceholder = errors.New("unknown path placeholder")
	// ErrEscapesRoot wraps a failure to scope a relative destination
	// inside the game install directory.
	ErrEscapesRoot = errors.New("path escapes destination root")
)

// placeholderPattern finds any remaining <<...>> token after substitution.
var placeholderPattern = regexp.MustCompile(`<<[^<>]*>>`)

// Context carries the three process-wide roots. Callers pass it explicitly
// rather than reading ambient state.
type Context struct {
	// SourceRoot is the mod staging area where archives live.
	SourceRoot string
	// DestRoot is the game install directory.
	DestRoot string
	// TempRoot is scratch space for intermediate extraction.
	TempRoot string
}

// substitute replaces the closed placeholder set case-insensitively.
func (c Context) substitute(path string) (string, error) {
	path = replaceFold(path, PlaceholderModDir, c.SourceRoot)
	path = replaceFold(path, PlaceholderGameDir, c.DestRoot)
	path = replaceFold(path, PlaceholderTempDir, c.TempRoot)

	if token := placeholderPattern.FindString(path); token != "" {
		return "", fmt.Errorf("%w: %s", ErrUnknownPlaceholder, token)
	}
	return path, nil
}

// ValidatePlaceholders checks that path only uses the closed placeholder
// set, without resolving it.
func (c Context) ValidatePlaceholders(path string) error {
	_, err := c.substitute(path)
	return err
}

// ResolveSource resolves a source path: placeholders, native separators,
// then joins with the mod staging root when still relative.
func (c Context) ResolveSource(path string) (string, error) {
	return c.resolve(path, c.SourceRoot)
}

// ResolveTemp resolves a path against the temp root.
func (c Context) ResolveTemp(path string) (string, error) {
	return c.resolve(path, c.TempRoot)
}

// ResolveDestination resolves a destination path. A destination that is
// still relative after substitution is scoped inside the game install
// directory: ".." segments are clamped at the root rather than climbing
// out of it. A destination that is absolute after substitution is cleaned
// and returned without a containment check.
func (c Context) ResolveDestination(path string) (string, error) {
	substituted, err := c.substitute(path)
	if err != nil {
		return "", err
	}
	native := filepath.Clean(toNative(substituted))
	if filepath.IsAbs(native) {
		return native, nil
	}
	joined, err := securejoin.SecureJoin(c.DestRoot, native)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrEscapesRoot, path, err)
	}
	return joined, nil
}

func (c Context) resolve(path, root string) (string, error) {
	substituted, err := c.substitute(path)
	if err != nil {
		return "", err
	}
	native := toNative(substituted)
	if !filepath.IsAbs(native) {
		native = filepath.Join(root, native)
	}
	return filepath.Clean(native), nil
}

// toNative rewrites both separator conventions to the OS-native form.
func toNative(path string) string {
	path = strings.ReplaceAll(path, "\\", string(filepath.Separator))
	path = strings.ReplaceAll(path, "/", string(filepath.Separator))
	return path
}

// replaceFold replaces every case-insensitive occurrence of token.
func replaceFold(s, token, with string) string {
	lower := strings.ToLower(s)
	tokenLower := strings.ToLower(token)
	var b strings.Builder
	for {
		i := strings.Index(lower, tokenLower)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(with)
		s = s[i+len(token):]
		lower = lower[i+len(token):]
	}
}
