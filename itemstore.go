/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import (
	"fmt"
	"sync"
)

// ProviderSet is a thread-safe collection of providers keyed by type name.
// Note that it holds providers as any; the generic RegisterProvider and
// GetProvider helpers recover the typed form.
type ProviderSet struct {
	mu        sync.RWMutex
	providers map[string]any
}

// NewProviderSet creates an empty ProviderSet.
func NewProviderSet() *ProviderSet {
	return &ProviderSet{
		providers: make(map[string]any),
	}
}

// TypeNames returns the registered type names.
func (s *ProviderSet) TypeNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

func (s *ProviderSet) register(typeName string, p any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.providers[typeName]; exists {
		return fmt.Errorf("provider for type %q already registered", typeName)
	}
	s.providers[typeName] = p
	return nil
}

func (s *ProviderSet) get(typeName string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.providers[typeName]
	if !exists {
		return nil, fmt.Errorf("no provider registered for type %q", typeName)
	}
	return p, nil
}

// RegisterProvider adds a provider under its configured type name. Reserved
// names cannot occur here; New refuses to construct providers for them.
func RegisterProvider[T any](set *ProviderSet, p *Provider[T]) error {
	return set.register(p.TypeName(), p)
}

// GetProvider retrieves the provider registered for typeName. It fails when
// nothing is registered under the name or when the registered provider
// serves a different item type.
func GetProvider[T any](set *ProviderSet, typeName string) (*Provider[T], error) {
	raw, err := set.get(typeName)
	if err != nil {
		return nil, err
	}
	p, ok := raw.(*Provider[T])
	if !ok {
		return nil, fmt.Errorf("provider for type %q serves a different item type", typeName)
	}
	return p, nil
}
