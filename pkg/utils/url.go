package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
)

// HashKey returns the hex SHA256 of a search cache key. The key is a payload
// prefix such as "data:image/png;base64,..." and may hold any bytes; the hash
// is always 64 lowercase hex characters.
func HashKey(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

// ToAbsoluteURL converts a relative URL to an absolute URL given a base URL.
func ToAbsoluteURL(base *url.URL, relative string) (string, error) {
	relURL, err := url.Parse(relative)
	if err != nil {
		return "", err
	}
	if base == nil {
		return relURL.String(), nil
	}
	return base.ResolveReference(relURL).String(), nil
}

// Prefix returns at most the first n characters of s.
func Prefix(s string, n int) string {
	count := 0
	for idx := range s {
		if count == n {
			return s[:idx]
		}
		count++
	}
	return s
}
