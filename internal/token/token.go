// Package token provides the content fingerprint and keyword extraction
// shared by indexing and querying. Both sides must tokenize identically or
// retrieval silently breaks, which is why this lives in one package.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Keyword length bounds: tokens are kept when 2 < len < 50.
const (
	minKeywordLen = 3
	maxKeywordLen = 49
)

// Fingerprint returns a stable 128-bit content hash, hex encoded.
// SHA-256 truncated to 16 bytes: overkill for equality-based change
// detection, but cheap at source-file sizes and collision-free in practice.
func Fingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:16])
}

// FingerprintString is Fingerprint for string input.
func FingerprintString(content string) string {
	return Fingerprint([]byte(content))
}

// ExtractKeywords tokenizes text into a deduplicated, sorted slice of
// lowercase keywords. Non-alphanumeric runes act as separators; tokens
// outside the length bounds are dropped.
func ExtractKeywords(text string) []string {
	set := ExtractKeywordSet(text)
	keywords := make([]string, 0, len(set))
	for kw := range set {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// ExtractKeywordSet tokenizes text into a keyword set.
func ExtractKeywordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})

	var b strings.Builder
	flush := func() {
		if b.Len() >= minKeywordLen && b.Len() <= maxKeywordLen {
			set[strings.ToLower(b.String())] = struct{}{}
		}
		b.Reset()
	}

	for _, r := range text {
		if isAlphanumeric(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return set
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
