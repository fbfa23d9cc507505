package codec

import "encoding/json"

// JSON is the human-readable text codec. It is roughly twice as
// expensive as CBOR to encode and decode, but a damaged shard file can
// be inspected and repaired by hand.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Extension() string { return "json" }

func (JSON) Encode(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.MarshalIndent(m, "", "  ")
}

func (JSON) Decode(data []byte) (map[string]string, error) {
	m := make(map[string]string)
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Codec: "json", Err: err}
	}
	return m, nil
}
