package store

import (
	"strings"

	apperrors "github.com/louisbranch/assassin/internal/errors"
)

// reservedKeyChars are characters that must not appear in a single path key.
// The set matches the backing store's key syntax; the slash is the path
// separator and the rest would corrupt queries against it.
const reservedKeyChars = "./#$[]"

// ValidateKey reports whether a single path segment is usable as a store key.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.New(apperrors.CodeStorePathInvalid, "store key is empty")
	}
	if strings.ContainsAny(key, reservedKeyChars) {
		return apperrors.WithMetadata(apperrors.CodeStorePathInvalid,
			"store key contains reserved characters", map[string]string{"key": key})
	}
	return nil
}

// NormalizeKey strips reserved characters from a candidate key. The result
// is lossy and one-way; callers that need the original string must keep it.
func NormalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		if !strings.ContainsRune(reservedKeyChars, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Join assembles a path from individual keys.
func Join(keys ...string) string {
	return strings.Join(keys, "/")
}

// Split breaks a path into its keys.
func Split(path string) []string {
	return strings.Split(path, "/")
}

// ChildKey returns the direct child key of parent on the way to path,
// or "" when path is not strictly under parent.
func ChildKey(parent, path string) string {
	prefix := parent + "/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
