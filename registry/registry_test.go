/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/suparena/itemstore/storagemodels"
)

type account struct {
	Owner  string `json:"owner"`
	Secret string `json:"secret"`
}

func TestSchemaRegistry(t *testing.T) {
	schema := &storagemodels.TypeSchema{
		TypeName: "registry-test-account",
		Fields: []storagemodels.SchemaField{
			{FieldName: "owner", StorageName: "owner_name"},
			{FieldName: "secret", Strategy: storagemodels.StrategyEncrypt},
		},
	}
	if err := RegisterSchema[account](schema); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	byType, ok := GetSchema[account]()
	if !ok || byType != schema {
		t.Error("expected the registered schema by type")
	}

	byName, ok := GetSchemaByName("registry-test-account")
	if !ok || byName != schema {
		t.Error("expected the registered schema by name")
	}

	if _, ok := GetSchemaByName("registry-test-unknown"); ok {
		t.Error("expected no schema for an unregistered name")
	}
}

func TestRegisterSchemaValidates(t *testing.T) {
	bad := &storagemodels.TypeSchema{
		Fields: []storagemodels.SchemaField{{FieldName: "owner"}},
	}
	if err := RegisterSchema[account](bad); err == nil {
		t.Error("expected validation error for a schema with no type name")
	}
}

type reverser struct{}

func (reverser) Transform(field string, value any) (any, error) { return value, nil }
func (reverser) Restore(field string, value any) (any, error)   { return value, nil }

func TestTransformerRegistry(t *testing.T) {
	RegisterTransformer("registry-test-transformer", reverser{})

	tr, err := GetTransformer("registry-test-transformer")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, ok := tr.(reverser); !ok {
		t.Error("expected the registered transformer")
	}

	if _, err := GetTransformer("registry-test-missing"); err == nil {
		t.Error("expected error for an unregistered transformer")
	}

	t.Run("duplicate panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on duplicate registration")
			}
		}()
		RegisterTransformer("registry-test-transformer", reverser{})
	})
}
