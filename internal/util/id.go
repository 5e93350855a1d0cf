package util

import (
	"crypto/rand"
	"encoding/hex"
)

func NewID(prefix string) string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	if prefix == "" {
		return hex.EncodeToString(bytes)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// NewProjectID mints the short project identifier used when a handoff
// resolves to a project that does not exist yet.
func NewProjectID() string {
	bytes := make([]byte, 4)
	_, _ = rand.Read(bytes)
	return "P-" + hex.EncodeToString(bytes)
}
