/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/suparena/itemstore/storagemodels"
)

const conditionalCheckFailed = "ConditionalCheckFailed"

// txSlot maps one transaction entry back to the request slot it serves.
// Event entries share their related item's slot.
type txSlot struct {
	request int
	event   bool
}

// SaveBatch applies the requests as one DynamoDB transaction. Creates are
// guarded by attribute_not_exists, updates and deletes by an ETag equality
// condition, which gives the all-or-nothing contract for free: a cancelled
// transaction persists nothing. Cancellation reasons are folded back into
// per-slot statuses, the first conditional failure keeping its true status
// and every other slot reporting StatusFailedDependency.
func (s *Store) SaveBatch(ctx context.Context, requests []storagemodels.SaveRequest) ([]storagemodels.SaveResult, error) {
	results := make([]storagemodels.SaveResult, len(requests))
	if len(requests) == 0 {
		return results, nil
	}

	var txItems []types.TransactWriteItem
	var slots []txSlot
	bodies := make([]json.RawMessage, len(requests))

	for i := range requests {
		req := &requests[i]

		body, av, err := s.storedItem(req)
		if err != nil {
			return nil, err
		}
		bodies[i] = body

		put := &types.Put{
			TableName: &s.tableName,
			Item:      av,
		}
		switch req.Action {
		case storagemodels.SaveActionCreated:
			put.ConditionExpression = aws.String("attribute_not_exists(#pk)")
			put.ExpressionAttributeNames = map[string]string{"#pk": attrPK}
		case storagemodels.SaveActionUpdated, storagemodels.SaveActionDeleted:
			put.ConditionExpression = aws.String("attribute_exists(#pk) AND #etag = :etag")
			put.ExpressionAttributeNames = map[string]string{"#pk": attrPK, "#etag": attrETag}
			put.ExpressionAttributeValues = map[string]types.AttributeValue{
				":etag": &types.AttributeValueMemberS{Value: req.Base.ETag},
			}
			put.ReturnValuesOnConditionCheckFailure = types.ReturnValuesOnConditionCheckFailureAllOld
		default:
			return nil, fmt.Errorf("unsupported save action %q", req.Action)
		}
		txItems = append(txItems, types.TransactWriteItem{Put: put})
		slots = append(slots, txSlot{request: i})

		if req.Event != nil {
			eventPut, err := s.storedEvent(req.Event)
			if err != nil {
				return nil, err
			}
			txItems = append(txItems, types.TransactWriteItem{Put: eventPut})
			slots = append(slots, txSlot{request: i, event: true})
		}
	}

	_, err := s.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{
		TransactItems: txItems,
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && len(tce.CancellationReasons) == len(txItems) {
			return s.cancelledResults(requests, slots, tce.CancellationReasons), nil
		}
		return nil, fmt.Errorf("TransactWriteItems failed: %w", err)
	}

	for i := range requests {
		results[i] = storagemodels.SaveResult{
			Status: storagemodels.StatusOK,
			Item:   bodies[i],
		}
	}
	return results, nil
}

// storedItem assigns the fresh ETag, produces the canonical saved body and
// the attribute map written to the table.
func (s *Store) storedItem(req *storagemodels.SaveRequest) (json.RawMessage, map[string]types.AttributeValue, error) {
	var fields map[string]any
	if err := json.Unmarshal(req.Item, &fields); err != nil {
		return nil, nil, fmt.Errorf("failed to decode item body: %w", err)
	}
	fields[attrETag] = uuid.NewString()

	body, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode item body: %w", err)
	}

	stored, err := storageFields(req.Base.TypeName, body)
	if err != nil {
		return nil, nil, err
	}
	av, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal item attributes: %w", err)
	}
	av[attrPK] = &types.AttributeValueMemberS{Value: req.Base.PartitionKey}
	av[attrSK] = &types.AttributeValueMemberS{Value: sortKey(req.Base.TypeName, req.Base.ID)}
	return body, av, nil
}

// storedEvent builds the unconditional put for an audit event. Events are
// immutable and carry fresh UUIDs, so they never collide.
func (s *Store) storedEvent(event *storagemodels.ItemEvent) (*types.Put, error) {
	ev := *event
	ev.ETag = uuid.NewString()

	body, err := json.Marshal(&ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item event: %w", err)
	}
	stored, err := storageFields(ev.TypeName, body)
	if err != nil {
		return nil, err
	}
	av, err := attributevalue.MarshalMap(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event attributes: %w", err)
	}
	av[attrPK] = &types.AttributeValueMemberS{Value: ev.PartitionKey}
	av[attrSK] = &types.AttributeValueMemberS{Value: sortKey(ev.TypeName, ev.ID)}

	return &types.Put{
		TableName: &s.tableName,
		Item:      av,
	}, nil
}

// cancelledResults folds a transaction cancellation into per-slot statuses.
func (s *Store) cancelledResults(requests []storagemodels.SaveRequest, slots []txSlot, reasons []types.CancellationReason) []storagemodels.SaveResult {
	results := make([]storagemodels.SaveResult, len(requests))
	for i := range results {
		results[i].Status = storagemodels.StatusFailedDependency
	}

	for t, reason := range reasons {
		slot := slots[t]
		if slot.event || aws.ToString(reason.Code) != conditionalCheckFailed {
			continue
		}

		req := &requests[slot.request]
		switch req.Action {
		case storagemodels.SaveActionCreated:
			results[slot.request].Status = storagemodels.StatusConflict
		default:
			// ReturnValuesOnConditionCheckFailure distinguishes a missing
			// target from a stale ETag.
			if len(reason.Item) == 0 {
				results[slot.request].Status = storagemodels.StatusNotFound
			} else {
				results[slot.request].Status = storagemodels.StatusPreconditionFailed
			}
		}

		s.logger.Debug().
			Str("typeName", req.Base.TypeName).
			Str("id", req.Base.ID).
			Str("status", results[slot.request].Status.String()).
			Msg("transaction slot failed")

		// Only the first failing slot keeps its true status; the rest
		// stay FailedDependency.
		break
	}
	return results
}
