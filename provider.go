/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"

	"github.com/suparena/itemstore/datastore"
	"github.com/suparena/itemstore/errors"
	"github.com/suparena/itemstore/storagemodels"
)

// Operations is the bitmask of mutations a provider permits. Reads and
// queries are always available; the zero value permits nothing else.
type Operations uint8

const (
	// OperationsRead permits only reads and queries.
	OperationsRead Operations = 0

	OperationsCreate Operations = 1 << 0
	OperationsUpdate Operations = 1 << 1
	OperationsDelete Operations = 1 << 2

	OperationsAll = OperationsCreate | OperationsUpdate | OperationsDelete
)

// typeNamePattern constrains caller-supplied type names: lower-case,
// hyphen-separated, at least two characters, no leading or trailing hyphen.
var typeNamePattern = regexp.MustCompile(`^[a-z]+[a-z-]*[a-z]+$`)

// Config carries the construction parameters for a Provider.
type Config[T any] struct {
	// TypeName names the item type. It must match typeNamePattern and must
	// not collide with a reserved type name.
	TypeName string

	// Validator runs after the base item rules on every save. Optional.
	Validator func(item *T) error

	// Operations is the permitted-operations mask. The zero value is
	// read-only.
	Operations Operations

	// Logger receives diagnostics such as the unsaved-mutation warning.
	// Nil discards them.
	Logger *zerolog.Logger

	// DisableChangeTracking suppresses the Changes list on generated
	// item events. Events themselves are always generated.
	DisableChangeTracking bool
}

// Provider is the facade callers persist one item type through. It owns
// naming and validation rules and delegates storage to its backend.
// Constructed with New; a Provider is safe for concurrent use, the commands
// it hands out are not.
type Provider[T any] struct {
	backend      datastore.Backend
	typeName     string
	validator    func(item *T) error
	ops          Operations
	logger       zerolog.Logger
	trackChanges bool
}

// New constructs a Provider for item type T against a backend. T must embed
// storagemodels.BaseItem; configuration problems fail here, never later.
func New[T any](backend datastore.Backend, cfg Config[T]) (*Provider[T], error) {
	if backend == nil {
		return nil, errors.NewConfigurationError("backend", "must not be nil")
	}
	if !typeNamePattern.MatchString(cfg.TypeName) {
		return nil, errors.NewConfigurationError("typeName",
			fmt.Sprintf("%q does not match %q", cfg.TypeName, typeNamePattern.String()))
	}
	if storagemodels.IsReservedTypeName(cfg.TypeName) {
		return nil, errors.NewConfigurationError("typeName",
			fmt.Sprintf("%q is reserved", cfg.TypeName))
	}

	var probe T
	if _, ok := any(&probe).(storagemodels.BaseItemer); !ok {
		return nil, errors.NewConfigurationError("item type",
			fmt.Sprintf("%T does not embed storagemodels.BaseItem", probe))
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Provider[T]{
		backend:      backend,
		typeName:     cfg.TypeName,
		validator:    cfg.Validator,
		ops:          cfg.Operations,
		logger:       logger,
		trackChanges: !cfg.DisableChangeTracking,
	}, nil
}

// TypeName returns the configured item type name.
func (p *Provider[T]) TypeName() string { return p.typeName }

// Allows reports whether the permitted-operations mask includes op.
func (p *Provider[T]) Allows(op Operations) bool {
	return op == OperationsRead || p.ops&op == op
}

// Create builds a new unsaved item and returns a mutable save command for
// it. No backend I/O occurs until the command is saved.
func (p *Provider[T]) Create(id, partitionKey string) (*SaveCommand[T], error) {
	if !p.Allows(OperationsCreate) {
		return nil, errors.NewNotSupportedError("create", p.typeName)
	}

	item := new(T)
	now := time.Now().UTC()
	*base(item) = storagemodels.BaseItem{
		ID:           id,
		PartitionKey: partitionKey,
		TypeName:     p.typeName,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return p.newSaveCommand(item, storagemodels.SaveActionCreated, false)
}

// Read point-reads an item. It returns nil (and no error) when the item is
// absent or soft-deleted; otherwise the item arrives validated, in a
// read-only wrapper.
func (p *Provider[T]) Read(ctx context.Context, id, partitionKey string) (*QueryResult[T], error) {
	item, err := p.readItem(ctx, id, partitionKey)
	if err != nil || item == nil {
		return nil, err
	}
	return &QueryResult[T]{provider: p, item: item}, nil
}

// Update point-reads an item and returns a mutable save command with the
// version already incremented. Nil (and no error) when the item is absent
// or soft-deleted; there is nothing to mutate.
func (p *Provider[T]) Update(ctx context.Context, id, partitionKey string) (*SaveCommand[T], error) {
	if !p.Allows(OperationsUpdate) {
		return nil, errors.NewNotSupportedError("update", p.typeName)
	}

	item, err := p.readItem(ctx, id, partitionKey)
	if err != nil || item == nil {
		return nil, err
	}

	b := base(item)
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	return p.newSaveCommand(item, storagemodels.SaveActionUpdated, false)
}

// Delete point-reads an item and returns a read-only save command that
// soft-deletes it. Nil (and no error) when the item is absent or already
// deleted. The caller may not mutate a delete.
func (p *Provider[T]) Delete(ctx context.Context, id, partitionKey string) (*SaveCommand[T], error) {
	if !p.Allows(OperationsDelete) {
		return nil, errors.NewNotSupportedError("delete", p.typeName)
	}

	item, err := p.readItem(ctx, id, partitionKey)
	if err != nil || item == nil {
		return nil, err
	}

	now := time.Now().UTC()
	deleted := true
	b := base(item)
	b.Version++
	b.UpdatedAt = now
	b.DeletedAt = &now
	b.IsDeleted = &deleted
	return p.newSaveCommand(item, storagemodels.SaveActionDeleted, true)
}

// Query returns a query command seeded with the provider's base predicate:
// matching type name, not soft-deleted.
func (p *Provider[T]) Query() *QueryCommand[T] {
	return &QueryCommand[T]{
		provider:  p,
		queryable: p.backend.CreateQueryable(p.typeName),
	}
}

// Batch returns an empty batch command bound to this provider's backend.
func (p *Provider[T]) Batch() *BatchCommand[T] {
	return &BatchCommand[T]{provider: p}
}

func (p *Provider[T]) readItem(ctx context.Context, id, partitionKey string) (*T, error) {
	raw, err := p.backend.Read(ctx, p.typeName, id, partitionKey)
	if err != nil {
		return nil, errors.NewInternalError("point read failed", err)
	}
	if raw == nil {
		return nil, nil
	}

	item := new(T)
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, errors.NewInternalError("failed to deserialize item", err)
	}
	if base(item).Deleted() {
		return nil, nil
	}
	if err := p.validateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// validateItem composes the base item rules with the optional domain
// validator. It runs before any backend I/O on every save.
func (p *Provider[T]) validateItem(item *T) error {
	b := base(item)
	if b.ID == "" {
		return errors.NewValidationError("id", "must not be empty")
	}
	if b.PartitionKey == "" {
		return errors.NewValidationError("partitionKey", "must not be empty")
	}
	if b.TypeName != p.typeName {
		return errors.NewValidationError("typeName", fmt.Sprintf("must be %q, got %q", p.typeName, b.TypeName))
	}
	if b.CreatedAt.IsZero() {
		return errors.NewValidationError("createdAt", "must be set")
	}
	if b.UpdatedAt.IsZero() {
		return errors.NewValidationError("updatedAt", "must be set")
	}

	if p.validator != nil {
		if err := p.validator(item); err != nil {
			if errors.IsValidation(err) {
				return err
			}
			return errors.NewValidationError("", err.Error())
		}
	}
	return nil
}

// base extracts the embedded BaseItem. New guarantees the assertion holds
// for every T it accepts.
func base[T any](item *T) *storagemodels.BaseItem {
	return any(item).(storagemodels.BaseItemer).Base()
}

// itemKey renders the composite key used in error messages.
func itemKey(b *storagemodels.BaseItem) string {
	return b.ID + ":" + b.PartitionKey
}
