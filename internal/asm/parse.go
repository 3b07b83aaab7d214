package asm

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML class description. Unknown keys are rejected.
func Parse(data []byte) (*Class, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Class
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse class description: %w", err)
	}

	if c.Name == "" {
		return nil, fmt.Errorf("class description has no name")
	}

	return &c, nil
}

// AssembleYAML parses and assembles a YAML class description.
func AssembleYAML(data []byte) ([]byte, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}

	return Assemble(c)
}
