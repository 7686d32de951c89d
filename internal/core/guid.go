package core

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	guidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	guidLength   = 8

	// GuidePrefix marks history IDs for recorded guides.
	GuidePrefix = "gd"

	displayLengthSmall = 4
	displayLengthLarge = 6
)

// GenerateGUID creates a short GUID with the provided prefix.
func GenerateGUID(prefix string) (string, error) {
	normalized := strings.TrimSuffix(prefix, "-")

	buf := make([]byte, guidLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate guid: %w", err)
	}

	id := make([]byte, guidLength)
	for i := 0; i < guidLength; i++ {
		id[i] = guidAlphabet[int(buf[i])%len(guidAlphabet)]
	}

	return fmt.Sprintf("%s-%s", normalized, string(id)), nil
}

// GetDisplayPrefixLength returns how many ID characters to show for a
// history of guideCount entries.
func GetDisplayPrefixLength(guideCount int) int {
	if guideCount < 1000 {
		return displayLengthSmall
	}
	return displayLengthLarge
}

// GetGUIDPrefix strips the guide prefix and shortens the ID for display.
func GetGUIDPrefix(guid string, length int) string {
	base := strings.TrimPrefix(guid, GuidePrefix+"-")
	if length <= 0 {
		return ""
	}
	if length > len(base) {
		length = len(base)
	}
	return base[:length]
}
