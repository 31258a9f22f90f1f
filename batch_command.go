/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import (
	"context"

	"github.com/suparena/itemstore/errors"
	"github.com/suparena/itemstore/storagemodels"
)

// BatchCommand aggregates save commands and submits them as one atomic
// backend operation. Submission order is commit order. Like the commands it
// carries, a batch is single-use and single-owner.
type BatchCommand[T any] struct {
	provider *Provider[T]
	commands []*SaveCommand[T]
}

// BatchResult is the per-slot outcome of a batch save. Exactly one of Item
// and Err is set.
type BatchResult[T any] struct {
	Item *T
	Err  error
}

// Add appends a save command. The command must come from the same provider
// and must not have been consumed.
func (b *BatchCommand[T]) Add(cmd *SaveCommand[T]) error {
	if cmd == nil {
		return errors.NewValidationError("", "nil save command")
	}
	if cmd.provider != b.provider {
		return errors.NewValidationError("", "save command belongs to a different provider")
	}
	if cmd.consumed {
		return errors.ErrCommandConsumed
	}
	b.commands = append(b.commands, cmd)
	return nil
}

// Len returns the number of queued commands.
func (b *BatchCommand[T]) Len() int { return len(b.commands) }

// Save re-validates every member, submits the batch atomically and folds
// each slot's result back into its command. When any slot fails, the
// returned error is the failing slot's error; sibling slots report
// ErrFailedDependency through their BatchResult. A validation failure
// aborts before any backend I/O. An empty batch is a no-op.
func (b *BatchCommand[T]) Save(ctx context.Context) ([]BatchResult[T], error) {
	n := len(b.commands)
	if n == 0 {
		return nil, nil
	}

	requests := make([]storagemodels.SaveRequest, n)
	for i, cmd := range b.commands {
		req, err := cmd.buildRequest(ctx)
		if err != nil {
			return nil, err
		}
		requests[i] = *req
	}
	for _, cmd := range b.commands {
		cmd.consumed = true
	}

	results, err := b.provider.backend.SaveBatch(ctx, requests)
	if err != nil {
		return nil, errors.NewInternalError("batch save failed", err)
	}
	if len(results) != n {
		return nil, errors.NewInternalError("backend returned a malformed batch result", nil)
	}

	out := make([]BatchResult[T], n)
	var firstErr error
	for i, cmd := range b.commands {
		item, err := cmd.apply(results[i])
		out[i] = BatchResult[T]{Item: item, Err: err}
		if err != nil && firstErr == nil && !errors.IsFailedDependency(err) {
			firstErr = err
		}
	}
	return out, firstErr
}
