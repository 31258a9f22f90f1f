/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides the reference in-memory backend. It implements
// the full datastore.Backend contract and doubles as the conformance
// implementation: batch saves are copy-on-write and publish only when every
// slot succeeds, reads and queries run under a shared lock.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/suparena/itemstore/storagemodels"
)

// Store is an in-memory backend. One Store holds every item type written
// through it, the way a single table would.
type Store struct {
	mu     sync.RWMutex
	items  map[recordKey]*record
	logger zerolog.Logger
}

type recordKey struct {
	typeName     string
	partitionKey string
	id           string
}

// record is immutable once stored; a batch save replaces records, it never
// mutates them in place.
type record struct {
	base   storagemodels.BaseItem
	body   json.RawMessage
	fields map[string]any
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		items:  make(map[recordKey]*record),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateQueryable returns a queryable scoped to typeName.
func (s *Store) CreateQueryable(typeName string) *storagemodels.Queryable {
	return &storagemodels.Queryable{TypeName: typeName}
}

// Read returns the serialized item, or nil when it is absent or
// soft-deleted.
func (s *Store) Read(ctx context.Context, typeName, id, partitionKey string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.items[recordKey{typeName: typeName, partitionKey: partitionKey, id: id}]
	if !ok || rec.base.Deleted() {
		return nil, nil
	}
	return rec.body, nil
}

// SaveBatch applies the requests in order against a copy-on-write working
// set. The working set is published only if every slot succeeds; otherwise
// it is discarded, the failing slot keeps its true status and every other
// slot reports StatusFailedDependency. No suspension occurs while the
// exclusive lock is held.
func (s *Store) SaveBatch(ctx context.Context, requests []storagemodels.SaveRequest) ([]storagemodels.SaveResult, error) {
	results := make([]storagemodels.SaveResult, len(requests))
	if len(requests) == 0 {
		return results, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := make(map[recordKey]*record, len(s.items)+2*len(requests))
	for k, v := range s.items {
		working[k] = v
	}

	saved := make([]*record, len(requests))
	failedAt := -1
	for i := range requests {
		status, rec := applyOne(working, &requests[i])
		if status != storagemodels.StatusOK {
			results[i].Status = status
			failedAt = i
			break
		}
		saved[i] = rec
	}

	if failedAt >= 0 {
		for i := range requests {
			if i != failedAt {
				results[i] = storagemodels.SaveResult{Status: storagemodels.StatusFailedDependency}
			}
		}
		s.logger.Debug().
			Int("slot", failedAt).
			Str("status", results[failedAt].Status.String()).
			Str("typeName", requests[failedAt].Base.TypeName).
			Str("id", requests[failedAt].Base.ID).
			Msg("batch save discarded")
		return results, nil
	}

	s.items = working
	for i := range requests {
		results[i] = storagemodels.SaveResult{
			Status: storagemodels.StatusOK,
			Item:   saved[i].body,
		}
	}
	return results, nil
}

// applyOne validates and applies a single slot against the working set.
func applyOne(working map[recordKey]*record, req *storagemodels.SaveRequest) (storagemodels.StatusCode, *record) {
	key := recordKey{
		typeName:     req.Base.TypeName,
		partitionKey: req.Base.PartitionKey,
		id:           req.Base.ID,
	}

	switch req.Action {
	case storagemodels.SaveActionCreated:
		if _, exists := working[key]; exists {
			return storagemodels.StatusConflict, nil
		}
	case storagemodels.SaveActionUpdated, storagemodels.SaveActionDeleted:
		current, exists := working[key]
		if !exists || current.base.Deleted() {
			return storagemodels.StatusNotFound, nil
		}
		if current.base.ETag != req.Base.ETag {
			return storagemodels.StatusPreconditionFailed, nil
		}
	default:
		return storagemodels.StatusInternalError, nil
	}

	rec, err := newRecord(req.Base, req.Item)
	if err != nil {
		return storagemodels.StatusInternalError, nil
	}
	working[key] = rec

	if req.Event != nil {
		event := *req.Event
		body, err := json.Marshal(&event)
		if err != nil {
			return storagemodels.StatusInternalError, nil
		}
		eventRec, err := newRecord(event.BaseItem, body)
		if err != nil {
			return storagemodels.StatusInternalError, nil
		}
		working[recordKey{
			typeName:     event.TypeName,
			partitionKey: event.PartitionKey,
			id:           event.ID,
		}] = eventRec
	}

	return storagemodels.StatusOK, rec
}

// newRecord assigns a fresh ETag and re-serializes the item with it.
func newRecord(base storagemodels.BaseItem, body json.RawMessage) (*record, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}

	etag := uuid.NewString()
	base.ETag = etag
	fields["etag"] = etag

	stored, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	return &record{base: base, body: stored, fields: fields}, nil
}

// Query executes a queryable. Matching, ordering and paging happen under a
// shared lock against the live snapshot; results are then streamed, with
// cancellation checked between yields.
func (s *Store) Query(ctx context.Context, q *storagemodels.Queryable) (<-chan json.RawMessage, <-chan error) {
	items := make(chan json.RawMessage)
	errs := make(chan error, 1)

	go func() {
		defer close(items)
		defer close(errs)

		matched := s.match(q)
		for _, body := range matched {
			select {
			case items <- body:
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return items, errs
}

func (s *Store) match(q *storagemodels.Queryable) []json.RawMessage {
	s.mu.RLock()
	var recs []*record
	for key, rec := range s.items {
		if key.typeName != q.TypeName || rec.base.Deleted() {
			continue
		}
		if !matchAll(rec.fields, q.Conditions) {
			continue
		}
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	sortRecords(recs, q.Orders)

	if q.Skip > 0 {
		if q.Skip >= len(recs) {
			recs = nil
		} else {
			recs = recs[q.Skip:]
		}
	}
	if q.Take > 0 && q.Take < len(recs) {
		recs = recs[:q.Take]
	}

	bodies := make([]json.RawMessage, len(recs))
	for i, rec := range recs {
		bodies[i] = rec.body
	}
	return bodies
}

func matchAll(fields map[string]any, conditions []storagemodels.Condition) bool {
	for _, c := range conditions {
		if !matchCondition(fields, c) {
			return false
		}
	}
	return true
}

func matchCondition(fields map[string]any, c storagemodels.Condition) bool {
	v := fields[c.Field]

	switch c.Op {
	case storagemodels.OpEqual:
		return equalValues(v, c.Value)
	case storagemodels.OpNotEqual:
		return !equalValues(v, c.Value)
	case storagemodels.OpGreaterThan:
		cmp, ok := compareValues(v, c.Value)
		return ok && cmp > 0
	case storagemodels.OpGreaterOrEqual:
		cmp, ok := compareValues(v, c.Value)
		return ok && cmp >= 0
	case storagemodels.OpLessThan:
		cmp, ok := compareValues(v, c.Value)
		return ok && cmp < 0
	case storagemodels.OpLessOrEqual:
		cmp, ok := compareValues(v, c.Value)
		return ok && cmp <= 0
	case storagemodels.OpContains:
		return containsValue(v, c.Value)
	case storagemodels.OpBeginsWith:
		sv, okS := v.(string)
		pv, okP := c.Value.(string)
		return okS && okP && strings.HasPrefix(sv, pv)
	default:
		return false
	}
}

func containsValue(v, target any) bool {
	switch tv := v.(type) {
	case string:
		ts, ok := target.(string)
		return ok && strings.Contains(tv, ts)
	case []any:
		for _, el := range tv {
			if equalValues(el, target) {
				return true
			}
		}
	}
	return false
}

func equalValues(a, b any) bool {
	cmp, ok := compareValues(a, b)
	return ok && cmp == 0
}

// compareValues imposes a total order on JSON scalars: null < bool <
// number < string, comparing within a kind. ok is false for objects and
// arrays.
func compareValues(a, b any) (int, bool) {
	ra, okA := scalarRank(a)
	rb, okB := scalarRank(b)
	if !okA || !okB {
		return 0, false
	}
	if ra != rb {
		if ra < rb {
			return -1, true
		}
		return 1, true
	}

	switch ra {
	case rankNull:
		return 0, true
	case rankBool:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case rankNumber:
		av, _ := asFloat(a)
		bv, _ := asFloat(b)
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return strings.Compare(a.(string), b.(string)), true
	}
}

const (
	rankNull = iota
	rankBool
	rankNumber
	rankString
)

func scalarRank(v any) (int, bool) {
	switch v.(type) {
	case nil:
		return rankNull, true
	case bool:
		return rankBool, true
	case string:
		return rankString, true
	}
	if _, ok := asFloat(v); ok {
		return rankNumber, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case json.Number:
		f, err := tv.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// sortRecords applies the requested orders, then partition key and id as
// final tiebreakers so results are deterministic.
func sortRecords(recs []*record, orders []storagemodels.Order) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, o := range orders {
			cmp, ok := compareValues(recs[i].fields[o.Field], recs[j].fields[o.Field])
			if !ok || cmp == 0 {
				continue
			}
			if o.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		if recs[i].base.PartitionKey != recs[j].base.PartitionKey {
			return recs[i].base.PartitionKey < recs[j].base.PartitionKey
		}
		return recs[i].base.ID < recs[j].base.ID
	})
}
