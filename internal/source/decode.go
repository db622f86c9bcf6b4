package source

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	concatBuffersVersion = 1
	ivLength             = 12
)

var ErrMalformedPayload = errors.New("malformed encoded payload")

// encodingMetadata is the header of the compressed v2 format.
type encodingMetadata struct {
	Version     int    `json:"version"`
	Compression string `json:"compression"`
	Encryption  string `json:"encryption"`
}

// DecodeScenePayload decrypts a backend payload with the share-link key
// and returns the scene JSON. The compressed v2 format is tried first,
// then the legacy formats (zero IV, then IV-prefixed ciphertext).
func DecodeScenePayload(body []byte, key string) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	if data, err := decodeV2(body, aead); err == nil {
		return data, nil
	}

	if data, err := aead.Open(nil, make([]byte, ivLength), body, nil); err == nil {
		return data, nil
	}
	if len(body) <= ivLength {
		return nil, ErrMalformedPayload
	}
	data, err := aead.Open(nil, body[:ivLength], body[ivLength:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return data, nil
}

func decodeV2(body []byte, aead cipher.AEAD) ([]byte, error) {
	parts, err := SplitBuffers(body)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 || len(parts[1]) != aead.NonceSize() {
		return nil, ErrMalformedPayload
	}

	var meta encodingMetadata
	if err := json.Unmarshal(parts[0], &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	plain, err := aead.Open(nil, parts[1], parts[2], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	if meta.Compression != "" {
		zr, err := zlib.NewReader(bytes.NewReader(plain))
		if err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		defer zr.Close()
		if plain, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
	}

	contents, err := SplitBuffers(plain)
	if err != nil {
		return nil, err
	}
	if len(contents) != 2 {
		return nil, ErrMalformedPayload
	}
	return contents[1], nil
}

// ConcatBuffers frames buffers as a version word followed by
// length-prefixed chunks, all big-endian uint32.
func ConcatBuffers(buffers ...[]byte) []byte {
	size := 4
	for _, b := range buffers {
		size += 4 + len(b)
	}
	out := make([]byte, 0, size)
	out = binary.BigEndian.AppendUint32(out, concatBuffersVersion)
	for _, b := range buffers {
		out = binary.BigEndian.AppendUint32(out, uint32(len(b)))
		out = append(out, b...)
	}
	return out
}

// SplitBuffers reverses ConcatBuffers.
func SplitBuffers(data []byte) ([][]byte, error) {
	if len(data) < 8 {
		return nil, ErrMalformedPayload
	}
	if v := binary.BigEndian.Uint32(data); v > concatBuffersVersion {
		return nil, fmt.Errorf("%w: version %d", ErrMalformedPayload, v)
	}

	var parts [][]byte
	cursor := 4
	for cursor < len(data) {
		if cursor+4 > len(data) {
			return nil, ErrMalformedPayload
		}
		n := int(binary.BigEndian.Uint32(data[cursor:]))
		cursor += 4
		if n < 0 || cursor+n > len(data) {
			return nil, ErrMalformedPayload
		}
		parts = append(parts, data[cursor:cursor+n])
		cursor += n
	}
	return parts, nil
}

// newAEAD builds AES-GCM from the base64url key of a share link.
func newAEAD(key string) (cipher.AEAD, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(key, "="))
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return cipher.NewGCM(block)
}
