/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/suparena/itemstore/diff"
	"github.com/suparena/itemstore/errors"
	"github.com/suparena/itemstore/storagemodels"
)

// SaveCommand is a single-use wrapper around one item and its pending
// mutation. It captures the item's serialized baseline at construction;
// saving diffs the baseline against the current state to build the audit
// event. A command is single-owner and not safe for concurrent use.
type SaveCommand[T any] struct {
	provider *Provider[T]
	item     *T
	action   storagemodels.SaveAction
	baseline json.RawMessage
	readOnly bool
	consumed bool
	saved    bool
}

func (p *Provider[T]) newSaveCommand(item *T, action storagemodels.SaveAction, readOnly bool) (*SaveCommand[T], error) {
	baseline, err := json.Marshal(item)
	if err != nil {
		return nil, errors.NewInternalError("failed to snapshot item", err)
	}
	return &SaveCommand[T]{
		provider: p,
		item:     item,
		action:   action,
		baseline: baseline,
		readOnly: readOnly,
	}, nil
}

// Item returns the wrapped item. Mutations through it are legal unless the
// command is read-only (deletes are); mutating a read-only command's item
// is a caller error the library does not detect.
func (c *SaveCommand[T]) Item() *T { return c.item }

// Action returns the mutation this command will perform.
func (c *SaveCommand[T]) Action() storagemodels.SaveAction { return c.action }

// ReadOnly reports whether further mutation is disallowed.
func (c *SaveCommand[T]) ReadOnly() bool { return c.readOnly }

// Saved reports whether the command completed successfully.
func (c *SaveCommand[T]) Saved() bool { return c.saved }

// Save re-validates the item, computes its property changes, builds the
// audit event and submits a one-element batch. On success the command's
// item reflects the backend state, including the newly assigned ETag. A
// second call on a saved or failed command returns ErrCommandConsumed.
func (c *SaveCommand[T]) Save(ctx context.Context) (*T, error) {
	req, err := c.buildRequest(ctx)
	if err != nil {
		return nil, err
	}
	c.consumed = true

	results, err := c.provider.backend.SaveBatch(ctx, []storagemodels.SaveRequest{*req})
	if err != nil {
		return nil, errors.NewInternalError("batch save failed", err)
	}
	if len(results) != 1 {
		return nil, errors.NewInternalError("backend returned a malformed batch result", nil)
	}
	return c.apply(results[0])
}

// Release marks the command finished without saving it. If the item was
// mutated since the baseline snapshot, a warning is logged; the mutation is
// lost, not recovered. Intended for defer:
//
//	cmd, err := provider.Update(ctx, id, pk)
//	...
//	defer cmd.Release()
//
// Release after a successful Save is a no-op.
func (c *SaveCommand[T]) Release() {
	if c == nil || c.consumed {
		return
	}
	c.consumed = true

	current, err := json.Marshal(c.item)
	if err != nil || bytes.Equal(current, c.baseline) {
		return
	}

	b := base(c.item)
	c.provider.logger.Warn().
		Str("typeName", b.TypeName).
		Str("id", b.ID).
		Str("partitionKey", b.PartitionKey).
		Str("action", string(c.action)).
		Msg("save command released with unsaved changes")
}

// buildRequest validates the item and assembles the batch slot for it.
// Validation failures consume the command; a successful build does not, so
// a batch can assemble every member before committing to the attempt.
func (c *SaveCommand[T]) buildRequest(ctx context.Context) (*storagemodels.SaveRequest, error) {
	if c.consumed {
		return nil, errors.ErrCommandConsumed
	}

	if err := c.provider.validateItem(c.item); err != nil {
		c.consumed = true
		return nil, err
	}

	current, err := json.Marshal(c.item)
	if err != nil {
		c.consumed = true
		return nil, errors.NewInternalError("failed to serialize item", err)
	}

	var changes []storagemodels.PropertyChange
	if c.provider.trackChanges {
		changes, err = diff.Changes(c.baseline, current)
		if err != nil {
			c.consumed = true
			return nil, errors.NewInternalError("failed to compute property changes", err)
		}
	}

	b := base(c.item)
	return &storagemodels.SaveRequest{
		Action: c.action,
		Base:   *b,
		Item:   current,
		Event:  newItemEvent(ctx, b, c.action, changes),
	}, nil
}

// apply folds one batch slot result back into the command's state.
func (c *SaveCommand[T]) apply(res storagemodels.SaveResult) (*T, error) {
	if res.Status != storagemodels.StatusOK {
		return nil, errors.FromStatus(res.Status, c.provider.typeName, itemKey(base(c.item)))
	}
	if err := json.Unmarshal(res.Item, c.item); err != nil {
		return nil, errors.NewInternalError("failed to deserialize saved item", err)
	}
	c.saved = true
	// The saved state is the new baseline, so Release stays quiet.
	c.baseline = res.Item
	return c.item, nil
}

// newItemEvent builds the audit record written in the same batch slot as
// its related item.
func newItemEvent(ctx context.Context, related *storagemodels.BaseItem, action storagemodels.SaveAction, changes []storagemodels.PropertyChange) *storagemodels.ItemEvent {
	now := time.Now().UTC()
	tr := traceFrom(ctx)
	return &storagemodels.ItemEvent{
		BaseItem: storagemodels.BaseItem{
			ID:           uuid.NewString(),
			PartitionKey: related.PartitionKey,
			TypeName:     storagemodels.EventTypeName,
			Version:      1,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		SaveAction:      action,
		RelatedID:       related.ID,
		RelatedTypeName: related.TypeName,
		Changes:         changes,
		TraceID:         tr.traceID,
		SpanID:          tr.spanID,
	}
}
