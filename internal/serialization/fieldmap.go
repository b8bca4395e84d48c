// Package serialization provides the canonical encoding of credential field
// maps. The encoded form is what the engine encrypts; keeping it canonical
// and versioned means encryption, decryption and masking all operate over a
// stable schema rather than an untyped blob.
package serialization

import (
	"encoding/json"
	"fmt"
)

// ContainerVersion is the current field-map container format. Decoders
// reject containers with any other version.
const ContainerVersion = 1

// container is the on-the-wire shape: a format version plus the fields.
// encoding/json emits map keys in sorted order, so the encoding is canonical
// and independent of map iteration order.
type container struct {
	Version int               `json:"v"`
	Fields  map[string]string `json:"fields"`
}

// EncodeFieldMap serializes a field map into the canonical container form.
func EncodeFieldMap(fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	data, err := json.Marshal(container{Version: ContainerVersion, Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("encode field container: %w", err)
	}
	return data, nil
}

// DecodeFieldMap parses canonical container bytes back into a field map. It
// fails on malformed JSON, a missing fields object, or an unsupported
// container version.
func DecodeFieldMap(data []byte) (map[string]string, error) {
	var c container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode field container: %w", err)
	}
	if c.Version != ContainerVersion {
		return nil, fmt.Errorf("unsupported field container version %d", c.Version)
	}
	if c.Fields == nil {
		return nil, fmt.Errorf("field container has no fields object")
	}
	return c.Fields, nil
}
