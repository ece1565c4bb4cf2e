package vault

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "v1/secret", expected: "v1/secret"},
		{input: "/v1/secret/", expected: "v1/secret"},
		{input: "  /v1/sys/health ", expected: "v1/sys/health"},
		{input: "/", expected: ""},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "v1/secret/data/key", JoinPath("v1/secret/", "/data", "key"))
	assert.Equal(t, "v1/secret/key", JoinPath("v1/secret", "", "key"))
	assert.Equal(t, "", JoinPath("", "/"))
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{key: "key", valid: true},
		{key: "app/db/password", valid: true},
		{key: "my key", valid: true},
		{key: "key.with.dots", valid: true},
		{key: "", valid: false},
		{key: "  ", valid: false},
		{key: "/key", valid: false},
		{key: "key/", valid: false},
		{key: "a//b", valid: false},
		{key: ".", valid: false},
		{key: "a/./b", valid: false},
		{key: "../escape", valid: false},
		{key: "a?b=c", valid: false},
		{key: "a#frag", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateKey(tt.key)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidKey)
			}
		})
	}
}

func TestBuildURL(t *testing.T) {
	base, err := url.Parse("https://vault.example.com:8200")
	require.NoError(t, err)

	got := buildURL(base, nil, "v1/secret", kv2DataSegment, "app/db")
	assert.Equal(t, "https://vault.example.com:8200/v1/secret/data/app/db", got)

	got = buildURL(base, nil, "v1/secret", kv2MetadataSegment, "a b%c")
	assert.Equal(t, "https://vault.example.com:8200/v1/secret/metadata/a%20b%25c", got)

	query := url.Values{}
	query.Set("standbyok", "true")
	got = buildURL(base, query, "/v1/sys/health/")
	assert.Equal(t, "https://vault.example.com:8200/v1/sys/health?standbyok=true", got)
}

func TestBuildURL_BasePath(t *testing.T) {
	base, err := url.Parse("http://proxy.local/vault/?ignored=1")
	require.NoError(t, err)

	got := buildURL(base, nil, "v1/secret", kv2DataSegment, "key")
	assert.Equal(t, "http://proxy.local/vault/v1/secret/data/key", got)
}
