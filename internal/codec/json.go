package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONCodec handles JSON import/export.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier.
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports item documents from JSON.
func (c *JSONCodec) Parse(r io.Reader) ([]Document, error) {
	var d dump
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	return fromDump(d), nil
}

// Export writes item documents as JSON.
func (c *JSONCodec) Export(docs []Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(toDump(docs)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	return nil
}
