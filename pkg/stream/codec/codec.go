// Package codec inflates the compressed magnitude payload carried by FFT
// frames. The producer compresses a little-endian float32 array with
// zlib-wrapped deflate and base64-encodes the result; it labels the method
// "gzip" on the wire, which is kept here as an accepted alias.
package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zlib"
)

// ErrDecodeFailure marks any payload that cannot be turned into a complete
// magnitude array. Callers drop the frame and keep the stream open.
var ErrDecodeFailure = errors.New("frame payload decode failure")

// Accepted compression method labels. All of them mean zlib-wrapped deflate.
var supportedMethods = map[string]struct{}{
	"gzip":    {},
	"zlib":    {},
	"deflate": {},
}

// Decode inflates a base64, zlib-compressed payload into magnitude samples.
// It never returns a partial array: any error yields (nil, error).
func Decode(payload string, method string) ([]float32, error) {
	if _, ok := supportedMethods[method]; !ok {
		return nil, fmt.Errorf("%w: unsupported compression method %q", ErrDecodeFailure, method)
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailure)
	}

	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed base64: %v", ErrDecodeFailure, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate init: %v", ErrDecodeFailure, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrDecodeFailure, err)
	}

	return bytesToFloat32(raw)
}

// Encode compresses magnitudes into the wire payload format. The inverse of
// Decode; used by tests and local tooling, never by the streaming path.
func Encode(magnitudes []float32) (payload string, compressedSize, originalSize int, err error) {
	raw := float32ToBytes(magnitudes)

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", 0, 0, fmt.Errorf("deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", 0, 0, fmt.Errorf("deflate close: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), buf.Len(), len(raw), nil
}

func bytesToFloat32(raw []byte) ([]float32, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty result after inflate", ErrDecodeFailure)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: inflated size %d is not a multiple of 4", ErrDecodeFailure, len(raw))
	}

	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

func float32ToBytes(samples []float32) []byte {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return raw
}
