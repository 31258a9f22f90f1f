/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/itemstore/registry"
	"github.com/suparena/itemstore/storagemodels"
)

// Query executes a queryable against the typeName GSI. Conditions are
// pushed down as a DynamoDB filter expression; ordering is applied
// client-side, since arbitrary fields cannot be pushed onto an index sort
// key. Without orders the stream pages lazily; with orders the full result
// set is materialized, sorted, then streamed.
func (s *Store) Query(ctx context.Context, q *storagemodels.Queryable) (<-chan json.RawMessage, <-chan error) {
	items := make(chan json.RawMessage)
	errs := make(chan error, 1)

	go s.queryWorker(ctx, q, items, errs)
	return items, errs
}

func (s *Store) queryWorker(ctx context.Context, q *storagemodels.Queryable, items chan<- json.RawMessage, errs chan<- error) {
	defer close(items)
	defer close(errs)

	input, err := s.buildQueryInput(q)
	if err != nil {
		errs <- err
		return
	}

	emit := newEmitter(ctx, q, items)
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		select {
		case <-ctx.Done():
			errs <- ctx.Err()
			return
		default:
		}

		input.ExclusiveStartKey = lastEvaluatedKey
		out, err := s.client.Query(ctx, input)
		if err != nil {
			errs <- fmt.Errorf("query error: %w", err)
			return
		}

		for _, raw := range out.Items {
			fields, err := itemFields(q.TypeName, raw)
			if err != nil {
				errs <- err
				return
			}
			done, err := emit.add(fields)
			if err != nil {
				errs <- err
				return
			}
			if done {
				return
			}
		}

		lastEvaluatedKey = out.LastEvaluatedKey
		if lastEvaluatedKey == nil {
			break
		}
	}

	if err := emit.flush(); err != nil {
		errs <- err
	}
}

// buildQueryInput translates the pipeline into a GSI query with a filter
// expression, mapping logical field names through the type's schema.
func (s *Store) buildQueryInput(q *storagemodels.Queryable) (*sdk.QueryInput, error) {
	names := map[string]string{
		"#tn":  attrTypeName,
		"#del": attrIsDeleted,
	}
	values := map[string]types.AttributeValue{
		":tn": &types.AttributeValueMemberS{Value: q.TypeName},
	}

	schema, hasSchema := registry.GetSchemaByName(q.TypeName)

	// Soft-deleted items never leave the backend.
	filters := []string{"attribute_not_exists(#del)"}
	for i, c := range q.Conditions {
		field := c.Field
		if hasSchema {
			field = schema.StorageName(c.Field)
		}

		namePH := fmt.Sprintf("#f%d", i)
		valuePH := fmt.Sprintf(":v%d", i)
		names[namePH] = field

		av, err := attributevalue.Marshal(c.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal condition value for field %q: %w", c.Field, err)
		}
		values[valuePH] = av

		switch c.Op {
		case storagemodels.OpEqual, storagemodels.OpNotEqual,
			storagemodels.OpGreaterThan, storagemodels.OpGreaterOrEqual,
			storagemodels.OpLessThan, storagemodels.OpLessOrEqual:
			filters = append(filters, fmt.Sprintf("%s %s %s", namePH, c.Op, valuePH))
		case storagemodels.OpContains:
			filters = append(filters, fmt.Sprintf("contains(%s, %s)", namePH, valuePH))
		case storagemodels.OpBeginsWith:
			filters = append(filters, fmt.Sprintf("begins_with(%s, %s)", namePH, valuePH))
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
	}

	keyCondition := "#tn = :tn"
	filterExpr := strings.Join(filters, " AND ")
	return &sdk.QueryInput{
		TableName:                 &s.tableName,
		IndexName:                 stringPtr(TypeNameIndexName),
		KeyConditionExpression:    &keyCondition,
		FilterExpression:          &filterExpr,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}, nil
}

func stringPtr(s string) *string { return &s }

// emitter applies the pipeline's order/skip/take tail. Lazy when no
// ordering is requested, buffering otherwise.
type emitter struct {
	ctx      context.Context
	q        *storagemodels.Queryable
	items    chan<- json.RawMessage
	buffered []map[string]any
	skipped  int
	sent     int
}

func newEmitter(ctx context.Context, q *storagemodels.Queryable, items chan<- json.RawMessage) *emitter {
	return &emitter{ctx: ctx, q: q, items: items}
}

// add feeds one decoded item through the pipeline tail. done is true once
// the take limit is reached.
func (e *emitter) add(fields map[string]any) (done bool, err error) {
	if len(e.q.Orders) > 0 {
		e.buffered = append(e.buffered, fields)
		return false, nil
	}

	if e.skipped < e.q.Skip {
		e.skipped++
		return false, nil
	}
	if err := e.send(fields); err != nil {
		return false, err
	}
	return e.q.Take > 0 && e.sent >= e.q.Take, nil
}

// flush sorts and streams the buffered result set. A no-op for lazy
// streams.
func (e *emitter) flush() error {
	if len(e.q.Orders) == 0 {
		return nil
	}

	orders := e.q.Orders
	sort.SliceStable(e.buffered, func(i, j int) bool {
		for _, o := range orders {
			cmp := compareScalars(e.buffered[i][o.Field], e.buffered[j][o.Field])
			if cmp == 0 {
				continue
			}
			if o.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	rows := e.buffered
	if e.q.Skip > 0 {
		if e.q.Skip >= len(rows) {
			return nil
		}
		rows = rows[e.q.Skip:]
	}
	if e.q.Take > 0 && e.q.Take < len(rows) {
		rows = rows[:e.q.Take]
	}

	for _, fields := range rows {
		if err := e.send(fields); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) send(fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode queried item: %w", err)
	}
	select {
	case e.items <- body:
		e.sent++
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	}
}

// compareScalars orders JSON scalars: null < bool < number < string.
// Non-scalars compare equal.
func compareScalars(a, b any) int {
	ra, rb := scalarRank(a), scalarRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 1:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case 2:
		av, bv := a.(float64), b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	default:
		return 0
	}
}

func scalarRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
