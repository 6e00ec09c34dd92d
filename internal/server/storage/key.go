package storage

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateKey derives a fresh storage key: "{folder}/{token}.{ext}".
// The token is a random UUID, so every call yields a unique key; ext is
// used verbatim.
func GenerateKey(folder, ext string) string {
	return sanitizeFolder(folder) + "/" + uuid.NewString() + "." + ext
}

// sanitizeFolder strips a single trailing path separator.
func sanitizeFolder(folder string) string {
	return strings.TrimSuffix(folder, "/")
}
