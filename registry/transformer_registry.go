/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sync"
)

// Transformer converts field values on their way into and out of a backend.
// Schema fields marked with the encrypt strategy are routed through the
// transformer registered for their type name; the cipher itself lives with
// the caller, not in this library.
type Transformer interface {
	// Transform converts a field value before it is written.
	Transform(field string, value any) (any, error)

	// Restore is the inverse, applied on read.
	Restore(field string, value any) (any, error)
}

var (
	transformers   = make(map[string]Transformer)
	transformersMu sync.RWMutex
)

// RegisterTransformer registers the transformer for a type name. If one is
// already registered for the name, it panics to prevent accidental
// overrides.
func RegisterTransformer(typeName string, tr Transformer) {
	transformersMu.Lock()
	defer transformersMu.Unlock()

	if _, exists := transformers[typeName]; exists {
		panic(fmt.Sprintf("transformer registry: transformer for type %q already registered", typeName))
	}
	transformers[typeName] = tr
}

// GetTransformer returns the transformer registered for the given type
// name. If none is registered, it returns an error.
func GetTransformer(typeName string) (Transformer, error) {
	transformersMu.RLock()
	defer transformersMu.RUnlock()

	tr, ok := transformers[typeName]
	if !ok {
		return nil, fmt.Errorf("transformer registry: no transformer registered for type %q", typeName)
	}
	return tr, nil
}
