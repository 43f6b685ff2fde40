package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	sizes := []int{1, 64, 2048, 4097}
	for _, size := range sizes {
		original := make([]float32, size)
		for i := range original {
			// Magnitudes in the stream live roughly in [-100, 0] dB.
			original[i] = rng.Float32()*100 - 100
		}

		payload, compressedSize, originalSize, err := Encode(original)
		if err != nil {
			t.Fatalf("Encode(%d samples): %v", size, err)
		}
		if originalSize != size*4 {
			t.Errorf("originalSize = %d, want %d", originalSize, size*4)
		}
		if compressedSize <= 0 {
			t.Errorf("compressedSize = %d, want > 0", compressedSize)
		}

		decoded, err := Decode(payload, "gzip")
		if err != nil {
			t.Fatalf("Decode(%d samples): %v", size, err)
		}
		if len(decoded) != size {
			t.Fatalf("decoded length = %d, want %d", len(decoded), size)
		}
		for i := range decoded {
			if math.Abs(float64(decoded[i]-original[i])) > 1e-6 {
				t.Fatalf("sample %d: got %f, want %f", i, decoded[i], original[i])
			}
		}
	}
}

func TestDecodeMethodAliases(t *testing.T) {
	payload, _, _, err := Encode([]float32{-42.5, -10.25})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	for _, method := range []string{"gzip", "zlib", "deflate"} {
		if _, err := Decode(payload, method); err != nil {
			t.Errorf("Decode with method %q: %v", method, err)
		}
	}
}

func TestDecodeFailures(t *testing.T) {
	valid, _, _, err := Encode([]float32{-1, -2, -3})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// A zlib stream whose inflated size is not a multiple of 4.
	oddPayload := encodeRawBytes(t, []byte{0x01, 0x02, 0x03})
	// A valid zlib stream with no content at all.
	emptyPayload := encodeRawBytes(t, nil)

	tests := []struct {
		name    string
		payload string
		method  string
	}{
		{"unsupported method", valid, "lz4"},
		{"empty payload", "", "gzip"},
		{"malformed base64", "!!!not-base64!!!", "gzip"},
		{"not a zlib stream", base64.StdEncoding.EncodeToString([]byte("plain text")), "gzip"},
		{"truncated zlib stream", truncate(t, valid), "gzip"},
		{"odd inflated size", oddPayload, "gzip"},
		{"empty inflated result", emptyPayload, "gzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.payload, tt.method)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrDecodeFailure) {
				t.Errorf("error %v does not wrap ErrDecodeFailure", err)
			}
			if decoded != nil {
				t.Errorf("expected nil magnitudes on failure, got %d samples", len(decoded))
			}
		})
	}
}

// encodeRawBytes compresses arbitrary bytes the way the producer would,
// bypassing the float32 layout, to build malformed-content payloads.
func encodeRawBytes(t *testing.T, raw []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("compress raw bytes: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close compressor: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func truncate(t *testing.T, payload string) string {
	t.Helper()
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decode valid payload: %v", err)
	}
	return base64.StdEncoding.EncodeToString(compressed[:len(compressed)/2])
}
