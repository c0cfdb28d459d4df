// Package fingerprint derives content-addressed keys for page content.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Length is the number of hex characters in a fingerprint.
const Length = 16

// Fingerprint returns the first Length hex characters of
// sha256(text + "|" + sourceID + "|" + runeCount(text)).
func Fingerprint(text, sourceID string) (string, error) {
	if text == "" || sourceID == "" {
		return "", ErrInvalidInput
	}
	if !utf8.ValidString(text) || !utf8.ValidString(sourceID) {
		return "", ErrInvalidInput
	}

	var b strings.Builder
	b.Grow(len(text) + len(sourceID) + 12)
	b.WriteString(text)
	b.WriteByte('|')
	b.WriteString(sourceID)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(utf8.RuneCountInString(text)))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:Length], nil
}

// NormalizeSource reduces a source URL to host+path so that scheme, "www.",
// query, fragment and trailing slashes do not distinguish two sources.
// Values that do not parse as URLs are returned trimmed and lowercased.
func NormalizeSource(source string) string {
	s := strings.TrimSpace(source)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		// "example.com/a" parses with an empty host; retry with a scheme.
		u, err = url.Parse("http://" + s)
		if err != nil || u.Host == "" {
			return strings.ToLower(s)
		}
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.TrimRight(u.EscapedPath(), "/")

	return host + path
}
