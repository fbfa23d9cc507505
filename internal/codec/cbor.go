package codec

import "github.com/fxamacker/cbor/v2"

// CBOR is the compact binary codec. Opaque on disk, but faster and
// smaller than JSON.
type CBOR struct{}

func (CBOR) Name() string { return "cbor" }

func (CBOR) Extension() string { return "cbor" }

func (CBOR) Encode(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return cbor.Marshal(m)
}

func (CBOR) Decode(data []byte) (map[string]string, error) {
	m := make(map[string]string)
	if len(data) == 0 {
		return m, nil
	}
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Codec: "cbor", Err: err}
	}
	return m, nil
}
