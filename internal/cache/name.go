package cache

import "strings"

// Sanitize maps basePath and key to a parameter name. Every rune other than
// ASCII letters, digits, '_', '.' and '/' is replaced with '_'; '-' is
// replaced as well, matching names written by earlier releases. Separators
// inside basePath are kept but a '/' inside key is replaced too, so "/cache"
// and "a/b" become "/cache/a_b" and a key can never reach into another
// hierarchy level.
//
// The mapping decides which stored parameter a key resolves to; changing it
// orphans everything already cached.
func Sanitize(basePath, key string) string {
	return strings.Map(pathRune, basePath) + "/" + strings.Map(keyRune, key)
}

func keyRune(r rune) rune {
	if r == '/' {
		return '_'
	}
	return pathRune(r)
}

func pathRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '_', r == '.', r == '/':
		return r
	}
	return '_'
}

// ValidName reports whether name only uses the characters a sanitized name
// can contain.
func ValidName(name string) bool {
	for _, r := range name {
		if pathRune(r) != r {
			return false
		}
	}
	return name != ""
}
