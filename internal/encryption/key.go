package encryption

import (
	"errors"
	"fmt"
)

// ErrInvalidKeyLength indicates the key material has an unsupported bit length.
var ErrInvalidKeyLength = errors.New("encryption: invalid key length")

// Supported AES key sizes in bits.
const (
	KeyBits128 = 128
	KeyBits192 = 192
	KeyBits256 = 256
)

const bitsPerByte = 8

// Key is validated AES key material. The zero value is not a usable key;
// keys are produced by KeyFactory only.
type Key struct {
	raw []byte
}

// Bytes returns a copy of the raw key bytes.
func (k Key) Bytes() []byte {
	out := make([]byte, len(k.raw))
	copy(out, k.raw)
	return out
}

// Len returns the key length in bytes.
func (k Key) Len() int {
	return len(k.raw)
}

// Bits returns the key length in bits.
func (k Key) Bits() int {
	return len(k.raw) * bitsPerByte
}

// String never prints key material.
func (k Key) String() string {
	return fmt.Sprintf("AES-%d key", k.Bits())
}

// KeyFactory validates raw bytes against the supported AES key lengths.
type KeyFactory struct{}

// NewKeyFactory creates a new KeyFactory.
func NewKeyFactory() *KeyFactory {
	return &KeyFactory{}
}

// FromBytes wraps raw as a Key if its bit length is 128, 192 or 256.
// The bytes are copied unchanged; no padding, truncation or derivation happens.
func (f *KeyFactory) FromBytes(raw []byte) (Key, error) {
	bits := len(raw) * bitsPerByte
	if !IsValidKeyBits(bits) {
		return Key{}, fmt.Errorf("%w: %d bits, expected one of %d, %d or %d",
			ErrInvalidKeyLength, bits, KeyBits128, KeyBits192, KeyBits256)
	}

	key := Key{raw: make([]byte, len(raw))}
	copy(key.raw, raw)
	return key, nil
}

// IsValidKeyBits returns true if bits is a supported AES key size.
func IsValidKeyBits(bits int) bool {
	switch bits {
	case KeyBits128, KeyBits192, KeyBits256:
		return true
	default:
		return false
	}
}
