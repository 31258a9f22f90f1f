/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/suparena/itemstore/registry"
	"github.com/suparena/itemstore/storagemodels"
)

// Single-table layout: every item lands in one table keyed by
// (pk, sk) = (partitionKey, typeName#id), with the item's own fields as
// top-level attributes. Queries run against a GSI keyed by typeName.
const (
	attrPK   = "pk"
	attrSK   = "sk"
	attrETag = "etag"

	attrTypeName  = "typeName"
	attrIsDeleted = "isDeleted"

	// TypeNameIndexName is the GSI the table must define: partition key
	// "typeName", no sort key requirement.
	TypeNameIndexName = "typeName-index"
)

// Store implements datastore.Backend on top of AWS DynamoDB.
type Store struct {
	client    *sdk.Client
	tableName string
	logger    zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store over an existing client and table.
func New(client *sdk.Client, tableName string, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	if tableName == "" {
		return nil, fmt.Errorf("tableName must not be empty")
	}

	s := &Store{
		client:    client,
		tableName: tableName,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateQueryable returns a queryable scoped to typeName.
func (s *Store) CreateQueryable(typeName string) *storagemodels.Queryable {
	return &storagemodels.Queryable{TypeName: typeName}
}

// Read performs a point lookup. It returns nil when the item is absent or
// soft-deleted.
func (s *Store) Read(ctx context.Context, typeName, id, partitionKey string) (json.RawMessage, error) {
	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       itemKey(partitionKey, typeName, id),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	fields, err := itemFields(typeName, out.Item)
	if err != nil {
		return nil, err
	}
	if deleted, ok := fields[attrIsDeleted].(bool); ok && deleted {
		return nil, nil
	}
	return json.Marshal(fields)
}

func sortKey(typeName, id string) string {
	return typeName + "#" + id
}

func itemKey(partitionKey, typeName, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: partitionKey},
		attrSK: &types.AttributeValueMemberS{Value: sortKey(typeName, id)},
	}
}

// storageFields converts an item's serialized JSON into the attribute map
// stored in the table, applying the type's schema: transform strategies
// first, then storage-name renames.
func storageFields(typeName string, body json.RawMessage) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode item body: %w", err)
	}

	schema, ok := registry.GetSchemaByName(typeName)
	if !ok {
		return fields, nil
	}

	if encrypted := schema.EncryptedFields(); len(encrypted) > 0 {
		tr, err := registry.GetTransformer(typeName)
		if err != nil {
			return nil, err
		}
		for _, field := range encrypted {
			v, present := fields[field]
			if !present {
				continue
			}
			out, err := tr.Transform(field, v)
			if err != nil {
				return nil, fmt.Errorf("failed to transform field %q: %w", field, err)
			}
			fields[field] = out
		}
	}

	for _, f := range schema.Fields {
		if f.StorageName == "" || f.StorageName == f.FieldName {
			continue
		}
		if v, present := fields[f.FieldName]; present {
			fields[f.StorageName] = v
			delete(fields, f.FieldName)
		}
	}
	return fields, nil
}

// itemFields is the inverse of storageFields: raw table attributes back to
// the item's logical JSON fields.
func itemFields(typeName string, av map[string]types.AttributeValue) (map[string]any, error) {
	var fields map[string]any
	if err := attributevalue.UnmarshalMap(av, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	delete(fields, attrPK)
	delete(fields, attrSK)

	schema, ok := registry.GetSchemaByName(typeName)
	if !ok {
		return fields, nil
	}

	for _, f := range schema.Fields {
		if f.StorageName == "" || f.StorageName == f.FieldName {
			continue
		}
		if v, present := fields[f.StorageName]; present {
			fields[f.FieldName] = v
			delete(fields, f.StorageName)
		}
	}

	if encrypted := schema.EncryptedFields(); len(encrypted) > 0 {
		tr, err := registry.GetTransformer(typeName)
		if err != nil {
			return nil, err
		}
		for _, field := range encrypted {
			v, present := fields[field]
			if !present {
				continue
			}
			out, err := tr.Restore(field, v)
			if err != nil {
				return nil, fmt.Errorf("failed to restore field %q: %w", field, err)
			}
			fields[field] = out
		}
	}
	return fields, nil
}
