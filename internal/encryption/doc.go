// Package encryption validates key material before it reaches a symmetric
// cipher.
//
// Only AES key sizes are accepted: 128, 192 and 256 bits. Any other length is
// rejected with ErrInvalidKeyLength so that callers never fall back to an
// unvalidated key.
//
//	key, err := encryption.NewKeyFactory().FromBytes(raw)
//	if errors.Is(err, encryption.ErrInvalidKeyLength) {
//	    // reject the key
//	}
package encryption
