/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore

import "context"

type traceCtxKey struct{}

type traceInfo struct {
	traceID string
	spanID  string
}

// WithTrace annotates a context with trace correlation identifiers. Item
// events generated under that context carry them, linking audit records to
// the caller's trace.
func WithTrace(ctx context.Context, traceID, spanID string) context.Context {
	return context.WithValue(ctx, traceCtxKey{}, traceInfo{traceID: traceID, spanID: spanID})
}

func traceFrom(ctx context.Context) traceInfo {
	tr, _ := ctx.Value(traceCtxKey{}).(traceInfo)
	return tr
}
