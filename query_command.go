/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/suparena/itemstore/errors"
	"github.com/suparena/itemstore/storagemodels"
)

// QueryCommand builds a deferred predicate/order/paging pipeline and
// streams results lazily. Conditions are keyed by JSON field name; the
// backend translates them into its native filter syntax. A command is
// single-pass: re-running a query means recreating it from the provider.
type QueryCommand[T any] struct {
	provider  *Provider[T]
	queryable *storagemodels.Queryable
	executed  bool
}

// Where appends a condition on a field.
func (q *QueryCommand[T]) Where(field string, op storagemodels.Operator, value any) *QueryCommand[T] {
	q.queryable.Where(field, op, value)
	return q
}

// OrderBy appends an ascending order. Chained orders apply in sequence.
func (q *QueryCommand[T]) OrderBy(field string) *QueryCommand[T] {
	q.queryable.OrderBy(field)
	return q
}

// OrderByDescending appends a descending order.
func (q *QueryCommand[T]) OrderByDescending(field string) *QueryCommand[T] {
	q.queryable.OrderByDescending(field)
	return q
}

// Skip discards the first n matches.
func (q *QueryCommand[T]) Skip(n int) *QueryCommand[T] {
	q.queryable.Skip = n
	return q
}

// Take caps the number of results.
func (q *QueryCommand[T]) Take(n int) *QueryCommand[T] {
	q.queryable.Take = n
	return q
}

// StreamResult is one element of a query stream. Exactly one of Result and
// Err is set; an Err element is always the last one.
type StreamResult[T any] struct {
	Result *QueryResult[T]
	Err    error
}

// Stream executes the pipeline and yields results lazily. Cancellation is
// checked between yields; a cancelled stream ends with the context's error.
// The channel is closed when the stream ends for any reason.
func (q *QueryCommand[T]) Stream(ctx context.Context) <-chan StreamResult[T] {
	out := make(chan StreamResult[T], 1)

	if q.executed {
		go func() {
			defer close(out)
			out <- StreamResult[T]{Err: errors.ErrCommandConsumed}
		}()
		return out
	}
	q.executed = true

	// A derived context lets an early exit below release the backend's
	// producer goroutine.
	ctx, cancel := context.WithCancel(ctx)

	items, errs := q.provider.backend.Query(ctx, q.queryable)
	go func() {
		defer close(out)
		defer cancel()

		for raw := range items {
			result, err := q.provider.wrapQueried(raw)
			if err != nil {
				out <- StreamResult[T]{Err: err}
				return
			}
			if result == nil {
				continue
			}
			select {
			case out <- StreamResult[T]{Result: result}:
			case <-ctx.Done():
				out <- StreamResult[T]{Err: ctx.Err()}
				return
			}
		}
		if err := <-errs; err != nil {
			out <- StreamResult[T]{Err: err}
		}
	}()
	return out
}

// All collects the stream into a slice. It returns the first error the
// stream produced, discarding partial results.
func (q *QueryCommand[T]) All(ctx context.Context) ([]*QueryResult[T], error) {
	var results []*QueryResult[T]
	for r := range q.Stream(ctx) {
		if r.Err != nil {
			return nil, r.Err
		}
		results = append(results, r.Result)
	}
	return results, nil
}

// wrapQueried validates and wraps one raw query hit. It returns nil for
// soft-deleted items even though the backend's base predicate should have
// excluded them already.
func (p *Provider[T]) wrapQueried(raw json.RawMessage) (*QueryResult[T], error) {
	item := new(T)
	if err := json.Unmarshal(raw, item); err != nil {
		return nil, errors.NewInternalError("failed to deserialize queried item", err)
	}
	if base(item).Deleted() {
		return nil, nil
	}
	if err := p.validateItem(item); err != nil {
		return nil, err
	}
	return &QueryResult[T]{provider: p, item: item}, nil
}

// QueryResult is a read-only view of an item produced by a point read or a
// query. It can be turned into an update or delete command without a second
// round-trip; the ETag it carries protects against staleness at save time.
type QueryResult[T any] struct {
	provider *Provider[T]
	item     *T
}

// Item returns the wrapped item. Treat it as read-only; mutate through
// UpdateCommand instead.
func (r *QueryResult[T]) Item() *T { return r.item }

// UpdateCommand returns a mutable save command for the wrapped item, with
// the version already incremented.
func (r *QueryResult[T]) UpdateCommand() (*SaveCommand[T], error) {
	if !r.provider.Allows(OperationsUpdate) {
		return nil, errors.NewNotSupportedError("update", r.provider.typeName)
	}

	b := base(r.item)
	b.Version++
	b.UpdatedAt = time.Now().UTC()
	return r.provider.newSaveCommand(r.item, storagemodels.SaveActionUpdated, false)
}

// DeleteCommand returns a read-only save command soft-deleting the wrapped
// item.
func (r *QueryResult[T]) DeleteCommand() (*SaveCommand[T], error) {
	if !r.provider.Allows(OperationsDelete) {
		return nil, errors.NewNotSupportedError("delete", r.provider.typeName)
	}

	now := time.Now().UTC()
	deleted := true
	b := base(r.item)
	b.Version++
	b.UpdatedAt = now
	b.DeletedAt = &now
	b.IsDeleted = &deleted
	return r.provider.newSaveCommand(r.item, storagemodels.SaveActionDeleted, true)
}
