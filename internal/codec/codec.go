// Package codec defines the serialization strategy for a shard's full
// contents. A codec is selected once at startup and applied uniformly to
// every shard file; mixing codecs across shards is unsupported.
package codec

import (
	"fmt"
	"strings"
)

// Codec encodes and decodes a complete shard map. Implementations must
// round-trip exactly: Decode(Encode(m)) == m for any map, with entry
// order irrelevant.
type Codec interface {
	// Name is the codec identifier used in config and filenames.
	Name() string

	// Extension is the shard file extension, without the dot.
	Extension() string

	// Encode serializes the full mapping.
	Encode(m map[string]string) ([]byte, error)

	// Decode parses serialized shard contents. Empty input yields an
	// empty map; malformed input yields a *DecodeError.
	Decode(data []byte) (map[string]string, error)
}

// FromName resolves a codec by its config name.
func FromName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON{}, nil
	case "cbor":
		return CBOR{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q (want json or cbor)", name)
	}
}

// Names returns the known codec names, for CLI help text.
func Names() []string {
	return []string{"json", "cbor"}
}

// DecodeError reports a shard file whose contents could not be parsed.
// Path is filled in by the layer that knows which file was being read.
type DecodeError struct {
	Codec string
	Path  string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("decode %s shard file %s: %v", e.Codec, e.Path, e.Err)
	}
	return fmt.Sprintf("decode %s shard contents: %v", e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
