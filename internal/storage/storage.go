// Package storage provides the key/value blob store used for captured PDF
// bytes and the checkpoint record.
package storage

import (
	"context"
	"strings"
)

// Store is the external put/get collaborator. Put returns a public reference
// (URL or filesystem path) for the stored object. Get returns (nil, nil) when
// the key does not exist.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// keyFallback is used when sanitization leaves nothing of the key.
const keyFallback = "unknown"

// SanitizeKey restricts a storage key to alphanumerics, '_', '.' and '-'.
// Path separators become a double underscore so distinct path-shaped inputs
// stay distinct; every other invalid character becomes a single underscore.
func SanitizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r == '/' || r == '\\':
			b.WriteString("__")
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '_', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if strings.Trim(out, "_") == "" {
		return keyFallback
	}
	return out
}
