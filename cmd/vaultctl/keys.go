package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/vyrodovalexey/vaultkv/internal/encryption"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

// Supported key material encodings.
const (
	encodingBase64 = "base64"
	encodingHex    = "hex"
	encodingRaw    = "raw"
)

// keyOutput is the JSON form of a key validation.
type keyOutput struct {
	Key     string `json:"key"`
	Bits    int    `json:"bits"`
	Version int    `json:"version,omitempty"`
}

func runKeygen(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("keygen", "[-bits 128|192|256] [-encoding base64|hex] <key>", cio)
	bits := fs.Int("bits", encryption.KeyBits256, "Key size in bits")
	encoding := fs.String("encoding", encodingBase64, "Encoding of the stored key material (base64, hex)")
	rest, code, ok := parseArgs(fs, args, 1)
	if !ok {
		return code
	}

	if !encryption.IsValidKeyBits(*bits) {
		fmt.Fprintf(cio.err, "Error: unsupported key size %d, expected 128, 192 or 256\n", *bits)
		return exitUsage
	}

	raw := make([]byte, *bits/8)
	if _, err := rand.Read(raw); err != nil {
		fmt.Fprintf(cio.err, "Error: failed to generate key material: %v\n", err)
		return exitError
	}

	key, err := encryption.NewKeyFactory().FromBytes(raw)
	if err != nil {
		fmt.Fprintf(cio.err, "Error: %v\n", err)
		return exitError
	}

	value, err := encodeKey(key.Bytes(), *encoding)
	if err != nil {
		fmt.Fprintf(cio.err, "Error: %v\n", err)
		return exitUsage
	}

	app.logger.WithContext(ctx).Info("storing generated key",
		observability.String("key", rest[0]),
		observability.Stringer("material", key),
	)

	return putSecret(ctx, app, cio, rest[0], value)
}

func runKey(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("key", "[-encoding base64|hex|raw] <key>", cio)
	encoding := fs.String("encoding", encodingBase64, "Encoding of the stored key material (base64, hex, raw)")
	rest, code, ok := parseArgs(fs, args, 1)
	if !ok {
		return code
	}

	var entry *vault.SecretEntry
	err := app.withRetry(ctx, vault.OpGetSecret, func(ctx context.Context) error {
		var err error
		entry, err = app.client.GetSecret(ctx, rest[0])
		return err
	})
	if err != nil {
		return reportError(ctx, app, cio, err)
	}

	raw, err := decodeKey(entry.Value, *encoding)
	if err != nil {
		fmt.Fprintf(cio.err, "Error: %v\n", err)
		return exitError
	}

	key, err := encryption.NewKeyFactory().FromBytes(raw)
	if err != nil {
		fmt.Fprintf(cio.err, "Error: secret %s is not valid key material: %v\n", entry.Key, err)
		return exitError
	}

	if cio.json {
		return writeJSON(cio, keyOutput{Key: entry.Key, Bits: key.Bits(), Version: entry.Version})
	}
	fmt.Fprintf(cio.out, "%s: %s\n", entry.Key, key)
	return exitOK
}

func encodeKey(raw []byte, encoding string) (string, error) {
	switch encoding {
	case encodingBase64:
		return base64.StdEncoding.EncodeToString(raw), nil
	case encodingHex:
		return hex.EncodeToString(raw), nil
	default:
		return "", fmt.Errorf("unsupported key encoding %q", encoding)
	}
}

func decodeKey(value, encoding string) ([]byte, error) {
	switch encoding {
	case encodingBase64:
		raw, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 key material: %w", err)
		}
		return raw, nil
	case encodingHex:
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding hex key material: %w", err)
		}
		return raw, nil
	case encodingRaw:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("unsupported key encoding %q", encoding)
	}
}
