/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"strings"
	"testing"
)

func TestParseTypeSchema(t *testing.T) {
	doc := `
typeName: account
fields:
  - field: owner
    storageName: owner_name
  - field: secret
    strategy: encrypt
  - field: note
`
	schema, err := ParseTypeSchema([]byte(doc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if schema.TypeName != "account" {
		t.Errorf("expected typeName account, got %q", schema.TypeName)
	}
	if got := schema.StorageName("owner"); got != "owner_name" {
		t.Errorf("expected owner_name, got %q", got)
	}
	if got := schema.StorageName("note"); got != "note" {
		t.Errorf("expected pass-through note, got %q", got)
	}
	if got := schema.FieldFor("owner_name"); got != "owner" {
		t.Errorf("expected owner, got %q", got)
	}
	encrypted := schema.EncryptedFields()
	if len(encrypted) != 1 || encrypted[0] != "secret" {
		t.Errorf("expected [secret], got %v", encrypted)
	}
}

func TestParseTypeSchemaErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			"missing type name",
			"fields:\n  - field: owner\n",
			"missing typeName",
		},
		{
			"unnamed field",
			"typeName: account\nfields:\n  - storageName: x\n",
			"no name",
		},
		{
			"duplicate field",
			"typeName: account\nfields:\n  - field: owner\n  - field: owner\n",
			"twice",
		},
		{
			"storage name collision",
			"typeName: account\nfields:\n  - field: a\n    storageName: x\n  - field: x\n",
			"storage name",
		},
		{
			"unknown strategy",
			"typeName: account\nfields:\n  - field: secret\n    strategy: rot13\n",
			"unknown strategy",
		},
		{
			"invalid yaml",
			"typeName: [broken",
			"failed to parse",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTypeSchema([]byte(tc.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
