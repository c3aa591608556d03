package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zlib"
)

// Wire format shared by the cache and any process reading its payloads:
// one marker byte, then either the raw JSON bytes or a zlib stream.
// Compression is decided independently per payload, so both paths must
// stay mutually decodable.
const (
	rawMarker        = 0x00
	compressedMarker = 0x01
)

var errEmptyPayload = errors.New("empty payload")

// Encode serializes value to JSON, compressing it when compression is
// enabled and the serialized size exceeds threshold.
func Encode(value any, compress bool, threshold int) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	if compress && len(raw) > threshold {
		var buf bytes.Buffer
		buf.WriteByte(compressedMarker)
		w, err := zlib.NewWriterLevel(&buf, 6)
		if err != nil {
			return nil, fmt.Errorf("creating zlib writer: %w", err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("compressing payload: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("flushing zlib writer: %w", err)
		}
		return buf.Bytes(), nil
	}

	out := make([]byte, 0, len(raw)+1)
	out = append(out, rawMarker)
	return append(out, raw...), nil
}

// Decode dispatches purely on the marker byte and unmarshals into dest.
func Decode(data []byte, dest any) error {
	if len(data) == 0 {
		return errEmptyPayload
	}

	raw := data[1:]
	if data[0] == compressedMarker {
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return fmt.Errorf("opening zlib reader: %w", err)
		}
		defer r.Close()
		raw, err = io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("decompressing payload: %w", err)
		}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}
