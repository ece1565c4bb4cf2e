package vault

import (
	"net/url"
	"strings"
)

// KV v2 path segments.
const (
	kv2DataSegment     = "data"
	kv2MetadataSegment = "metadata"
)

// NormalizePath normalizes a Vault path by removing leading/trailing slashes.
func NormalizePath(path string) string {
	return strings.Trim(strings.TrimSpace(path), "/")
}

// JoinPath joins path components, skipping empty ones.
func JoinPath(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = NormalizePath(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}

// ValidateKey checks that key can be used as a secret path below the mount.
// Nested keys ("app/db") are allowed; empty, "." and ".." segments are not.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return ErrInvalidKey
	}
	for _, segment := range strings.Split(key, "/") {
		switch segment {
		case "", ".", "..":
			return ErrInvalidKey
		}
		if strings.ContainsAny(segment, "?#") {
			return ErrInvalidKey
		}
	}
	return nil
}

// buildURL appends the slash-separated paths to base. Every segment is
// escaped on its own so the key remains a sequence of path segments on the wire.
func buildURL(base *url.URL, query url.Values, paths ...string) string {
	u := *base

	segments := make([]string, 0, 8)
	if p := NormalizePath(base.Path); p != "" {
		segments = append(segments, strings.Split(p, "/")...)
	}
	for _, p := range paths {
		if p = NormalizePath(p); p != "" {
			segments = append(segments, strings.Split(p, "/")...)
		}
	}

	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	u.Path = "/" + strings.Join(segments, "/")
	u.RawPath = "/" + strings.Join(escaped, "/")
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
