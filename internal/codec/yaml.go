package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier.
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports item documents from YAML.
func (c *YAMLCodec) Parse(r io.Reader) ([]Document, error) {
	var d dump
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return fromDump(d), nil
}

// Export writes item documents as YAML.
func (c *YAMLCodec) Export(docs []Document, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(toDump(docs)); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}

	return nil
}
