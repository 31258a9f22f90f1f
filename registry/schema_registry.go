/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"

	"github.com/suparena/itemstore/storagemodels"
)

// SchemaRegistry associates Go item types with their storage schema
// descriptors. Descriptors are registered once, at startup, and consulted
// by backend adapters for attribute naming and conversion selection.

var (
	schemasByType = make(map[reflect.Type]*storagemodels.TypeSchema)
	schemasByName = make(map[string]*storagemodels.TypeSchema)
	mu            sync.RWMutex
)

// RegisterSchema associates a Go type T with a validated type schema. The
// schema is also retrievable by its type name.
func RegisterSchema[T any](schema *storagemodels.TypeSchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	schemasByType[t] = schema
	schemasByName[schema.TypeName] = schema
	return nil
}

// GetSchema retrieves the schema registered for type T, if any.
func GetSchema[T any]() (*storagemodels.TypeSchema, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	s, ok := schemasByType[t]
	return s, ok
}

// GetSchemaByName retrieves a schema by its type name. Backend adapters use
// this form; they see type names, not Go types.
func GetSchemaByName(typeName string) (*storagemodels.TypeSchema, bool) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := schemasByName[typeName]
	return s, ok
}
