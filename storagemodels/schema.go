/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldStrategy selects the conversion applied to a field when it crosses
// into a backend. StrategyEncrypt marks the field for the transformer hook;
// the cipher itself lives behind that hook, not in this library.
type FieldStrategy string

const (
	StrategyNone    FieldStrategy = "none"
	StrategyEncrypt FieldStrategy = "encrypt"
)

// SchemaField maps one item field onto its storage representation.
type SchemaField struct {
	// FieldName is the JSON name of the field on the item.
	FieldName string `yaml:"field" json:"field"`

	// StorageName overrides the attribute/column name in the backend.
	// Empty means the field name is used as-is.
	StorageName string `yaml:"storageName,omitempty" json:"storageName,omitempty"`

	// Strategy selects the conversion applied on write and read.
	Strategy FieldStrategy `yaml:"strategy,omitempty" json:"strategy,omitempty"`
}

// TypeSchema is the declarative per-item-type descriptor consulted by
// backends for attribute naming and conversion selection. It is built once,
// at provider construction, never discovered by reflection per call.
type TypeSchema struct {
	TypeName string        `yaml:"typeName" json:"typeName"`
	Fields   []SchemaField `yaml:"fields" json:"fields"`
}

// ParseTypeSchema decodes and validates a YAML schema document.
func ParseTypeSchema(data []byte) (*TypeSchema, error) {
	var s TypeSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse type schema: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadTypeSchema reads a YAML schema file from disk.
func LoadTypeSchema(path string) (*TypeSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type schema %q: %w", path, err)
	}
	return ParseTypeSchema(data)
}

// Validate checks the descriptor for internal consistency: a type name,
// unique field names, unique storage names and known strategies.
func (s *TypeSchema) Validate() error {
	if s.TypeName == "" {
		return fmt.Errorf("type schema missing typeName")
	}
	fields := make(map[string]struct{}, len(s.Fields))
	storage := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.FieldName == "" {
			return fmt.Errorf("type schema %q has a field with no name", s.TypeName)
		}
		if _, dup := fields[f.FieldName]; dup {
			return fmt.Errorf("type schema %q lists field %q twice", s.TypeName, f.FieldName)
		}
		fields[f.FieldName] = struct{}{}

		name := f.StorageName
		if name == "" {
			name = f.FieldName
		}
		if _, dup := storage[name]; dup {
			return fmt.Errorf("type schema %q maps two fields onto storage name %q", s.TypeName, name)
		}
		storage[name] = struct{}{}

		switch f.Strategy {
		case "", StrategyNone, StrategyEncrypt:
		default:
			return fmt.Errorf("type schema %q field %q has unknown strategy %q", s.TypeName, f.FieldName, f.Strategy)
		}
	}
	return nil
}

// StorageName returns the backend attribute name for a field, falling back
// to the field name when no override is configured.
func (s *TypeSchema) StorageName(field string) string {
	for _, f := range s.Fields {
		if f.FieldName == field {
			if f.StorageName != "" {
				return f.StorageName
			}
			return field
		}
	}
	return field
}

// FieldFor is the inverse of StorageName.
func (s *TypeSchema) FieldFor(storageName string) string {
	for _, f := range s.Fields {
		if f.StorageName == storageName {
			return f.FieldName
		}
	}
	return storageName
}

// EncryptedFields returns the JSON names of fields marked StrategyEncrypt.
func (s *TypeSchema) EncryptedFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Strategy == StrategyEncrypt {
			out = append(out, f.FieldName)
		}
	}
	return out
}
