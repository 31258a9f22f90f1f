/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"encoding/json"

	"github.com/suparena/itemstore/storagemodels"
)

// Backend is the contract a storage adapter implements. One Backend
// instance serves every item type in its table or store; items cross the
// boundary in their serialized JSON form so adapters never depend on
// concrete item types.
type Backend interface {
	// CreateQueryable returns a base queryable scoped to typeName.
	// Backends always exclude soft-deleted items when executing it,
	// before any caller-supplied condition applies.
	CreateQueryable(typeName string) *storagemodels.Queryable

	// Query executes a queryable against the live store. Items arrive on
	// the first channel in pipeline order; at most one error arrives on
	// the second. Both channels are closed when the query finishes, fails
	// or the context is cancelled.
	Query(ctx context.Context, q *storagemodels.Queryable) (<-chan json.RawMessage, <-chan error)

	// Read is a point lookup. It returns nil (and no error) when the item
	// is absent or soft-deleted.
	Read(ctx context.Context, typeName, id, partitionKey string) (json.RawMessage, error)

	// SaveBatch atomically applies the requests in order. On the first
	// failing slot no further slots are attempted and nothing from the
	// batch persists: the failing slot reports its true status, every
	// other slot reports StatusFailedDependency. The returned slice
	// always has one result per request. The error return is reserved
	// for transport faults; per-slot semantic failures travel in the
	// results.
	SaveBatch(ctx context.Context, requests []storagemodels.SaveRequest) ([]storagemodels.SaveResult, error)
}
