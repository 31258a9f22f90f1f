/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"time"
)

// EventTypeName is the type name under which ItemEvent records are stored.
const EventTypeName = "event"

// ReservedTypeNames is the closed set of type names the library claims for
// itself. Caller-supplied type names may never collide with an entry here.
var ReservedTypeNames = map[string]struct{}{
	EventTypeName: {},
}

// IsReservedTypeName reports whether typeName is claimed by the library.
func IsReservedTypeName(typeName string) bool {
	_, ok := ReservedTypeNames[typeName]
	return ok
}

// BaseItem carries the identity, versioning and lifecycle fields shared by
// every stored item. Concrete item types embed it:
//
//	type Message struct {
//	    storagemodels.BaseItem
//	    Message string `json:"message"`
//	}
type BaseItem struct {
	// ID is unique within (PartitionKey, TypeName).
	ID string `json:"id"`

	// PartitionKey determines physical locality in the backend.
	PartitionKey string `json:"partitionKey"`

	// TypeName is fixed at creation and must match the provider's
	// configured name.
	TypeName string `json:"typeName"`

	// Version starts at 1 on create and increments on every update and
	// delete. It always changes together with ETag.
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DeletedAt is set once, on soft delete, and is terminal.
	DeletedAt *time.Time `json:"deletedAt,omitempty"`

	// IsDeleted is true after a soft delete. A soft-deleted item is
	// excluded from reads and queries but remains physically stored.
	IsDeleted *bool `json:"isDeleted,omitempty"`

	// ETag is an opaque concurrency token reassigned by the backend on
	// every successful write. A stale ETag on update or delete fails the
	// write with a precondition error.
	ETag string `json:"etag,omitempty"`
}

// Base returns the embedded base item. It makes every *T whose T embeds
// BaseItem satisfy BaseItemer.
func (b *BaseItem) Base() *BaseItem { return b }

// Deleted reports whether the item has been soft-deleted.
func (b *BaseItem) Deleted() bool {
	return b.IsDeleted != nil && *b.IsDeleted
}

// BaseItemer is satisfied by pointers to item types embedding BaseItem.
type BaseItemer interface {
	Base() *BaseItem
}

// SaveAction identifies the mutation an item is being saved with.
type SaveAction string

const (
	SaveActionUnknown SaveAction = "unknown"
	SaveActionCreated SaveAction = "created"
	SaveActionUpdated SaveAction = "updated"
	SaveActionDeleted SaveAction = "deleted"
)

// ItemEvent is the audit record generated alongside every item mutation.
// It is itself an item, stored under the reserved "event" type name in the
// same atomic batch slot as the item it describes, and never mutated after
// creation.
type ItemEvent struct {
	BaseItem

	SaveAction      SaveAction `json:"saveAction"`
	RelatedID       string     `json:"relatedId"`
	RelatedTypeName string     `json:"relatedTypeName"`

	// Changes holds the field-level deltas between the item's baseline
	// snapshot and its saved state. Nil when change tracking is disabled.
	Changes []PropertyChange `json:"changes,omitempty"`

	// Trace correlation, populated from the caller's context when present.
	TraceID string `json:"traceId,omitempty"`
	SpanID  string `json:"spanId,omitempty"`
}

// StatusCode classifies the outcome of a single batch slot. Values map 1:1
// onto HTTP status codes but are backend-independent.
type StatusCode int

const (
	StatusOK                 StatusCode = 200
	StatusNotFound           StatusCode = 404
	StatusConflict           StatusCode = 409
	StatusPreconditionFailed StatusCode = 412
	StatusFailedDependency   StatusCode = 424
	StatusInternalError      StatusCode = 500
)

func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusConflict:
		return "conflict"
	case StatusPreconditionFailed:
		return "precondition failed"
	case StatusFailedDependency:
		return "failed dependency"
	case StatusInternalError:
		return "internal error"
	default:
		return "unknown"
	}
}

// SaveRequest is one slot of an atomic batch save. Item is the full
// serialized item; Base duplicates its control fields so backends can
// enforce keys, versions and ETags without unmarshaling the concrete type.
type SaveRequest struct {
	Action SaveAction
	Base   BaseItem
	Item   json.RawMessage
	Event  *ItemEvent
}

// SaveResult is the per-slot outcome of a batch save. Item carries the
// saved item, with its newly assigned ETag, and is nil unless Status is
// StatusOK.
type SaveResult struct {
	Status StatusCode
	Item   json.RawMessage
}
