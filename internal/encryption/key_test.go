package encryption

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFactory_FromBytes_ValidLengths(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{128, 192, 256} {
		t.Run(fmt.Sprintf("%d_bits", bits), func(t *testing.T) {
			t.Parallel()

			raw := bytes.Repeat([]byte{0xAB}, bits/8)
			key, err := NewKeyFactory().FromBytes(raw)
			require.NoError(t, err)

			assert.Equal(t, bits/8, key.Len())
			assert.Equal(t, bits, key.Bits())
			assert.Equal(t, raw, key.Bytes())
		})
	}
}

func TestKeyFactory_FromBytes_InvalidLengths(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{0, 32, 64, 512, 1024, 2048, 4096} {
		t.Run(fmt.Sprintf("%d_bits", bits), func(t *testing.T) {
			t.Parallel()

			_, err := NewKeyFactory().FromBytes(make([]byte, bits/8))
			assert.ErrorIs(t, err, ErrInvalidKeyLength)
		})
	}
}

func TestKeyFactory_FromBytes_OddByteCounts(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 15, 17, 23, 25, 31, 33} {
		_, err := NewKeyFactory().FromBytes(make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidKeyLength, "length %d", n)
	}
}

func TestKey_IsDetachedFromInput(t *testing.T) {
	t.Parallel()

	raw := make([]byte, 16)
	key, err := NewKeyFactory().FromBytes(raw)
	require.NoError(t, err)

	raw[0] = 0xFF
	assert.Equal(t, byte(0), key.Bytes()[0])

	out := key.Bytes()
	out[1] = 0xFF
	assert.Equal(t, byte(0), key.Bytes()[1])
}

func TestKey_StringHidesMaterial(t *testing.T) {
	t.Parallel()

	key, err := NewKeyFactory().FromBytes(bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)

	assert.Equal(t, "AES-256 key", key.String())
	assert.NotContains(t, key.String(), "kkkk")
}

func TestIsValidKeyBits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits     int
		expected bool
	}{
		{128, true},
		{192, true},
		{256, true},
		{0, false},
		{64, false},
		{384, false},
		{512, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsValidKeyBits(tt.bits), "bits=%d", tt.bits)
	}
}
