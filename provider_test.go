/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package itemstore_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/suparena/itemstore"
	"github.com/suparena/itemstore/datastore/memory"
	"github.com/suparena/itemstore/datastore/testmodels"
	"github.com/suparena/itemstore/errors"
	"github.com/suparena/itemstore/storagemodels"
)

func newMessageProvider(t *testing.T, backend *memory.Store) *itemstore.Provider[testmodels.Message] {
	t.Helper()
	p, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
		TypeName:   "message",
		Operations: itemstore.OperationsAll,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	return p
}

func TestNewValidation(t *testing.T) {
	backend := memory.New()

	t.Run("nil backend", func(t *testing.T) {
		_, err := itemstore.New[testmodels.Message](nil, itemstore.Config[testmodels.Message]{
			TypeName: "message",
		})
		if !errors.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("bad type names", func(t *testing.T) {
		for _, typeName := range []string{"", "a", "Message", "my_type", "-message", "message-", "message1"} {
			_, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
				TypeName: typeName,
			})
			if !errors.IsConfiguration(err) {
				t.Errorf("type name %q: expected configuration error, got %v", typeName, err)
			}
		}
	})

	t.Run("reserved type name", func(t *testing.T) {
		_, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
			TypeName: storagemodels.EventTypeName,
		})
		if !errors.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("type without base item", func(t *testing.T) {
		type bare struct{ Name string }
		_, err := itemstore.New[bare](backend, itemstore.Config[bare]{TypeName: "bare-item"})
		if !errors.IsConfiguration(err) {
			t.Errorf("expected configuration error, got %v", err)
		}
	})

	t.Run("hyphenated name is valid", func(t *testing.T) {
		_, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
			TypeName: "chat-message",
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestOperationsGating(t *testing.T) {
	backend := memory.New()
	readOnly, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
		TypeName: "message",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if _, err := readOnly.Create("m-1", "p-1"); !errors.IsNotSupported(err) {
		t.Errorf("expected not supported on create, got %v", err)
	}
	if _, err := readOnly.Update(context.Background(), "m-1", "p-1"); !errors.IsNotSupported(err) {
		t.Errorf("expected not supported on update, got %v", err)
	}
	if _, err := readOnly.Delete(context.Background(), "m-1", "p-1"); !errors.IsNotSupported(err) {
		t.Errorf("expected not supported on delete, got %v", err)
	}

	// Reads and queries stay available on a read-only provider.
	if _, err := readOnly.Read(context.Background(), "m-1", "p-1"); err != nil {
		t.Errorf("read failed: %v", err)
	}
	if _, err := readOnly.Query().All(context.Background()); err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestCreateReadUpdateDeleteLifecycle(t *testing.T) {
	backend := memory.New()
	provider := newMessageProvider(t, backend)
	ctx := context.Background()

	create, err := provider.Create("m-1", "p-1")
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}
	create.Item().Message = "first"
	create.Item().Priority = 1

	created, err := create.Save(ctx)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Version != 1 {
		t.Errorf("expected version 1, got %d", created.Version)
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("expected createdAt == updatedAt, got %v / %v", created.CreatedAt, created.UpdatedAt)
	}
	if created.ETag == "" {
		t.Error("expected a backend-assigned etag")
	}

	read, err := provider.Read(ctx, "m-1", "p-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if read == nil || read.Item().Message != "first" {
		t.Fatalf("unexpected read result: %+v", read)
	}

	update, err := provider.Update(ctx, "m-1", "p-1")
	if err != nil {
		t.Fatalf("update command failed: %v", err)
	}
	update.Item().Message = "second"
	updated, err := update.Save(ctx)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("expected version 2, got %d", updated.Version)
	}
	if updated.ETag == created.ETag {
		t.Error("expected a fresh etag after update")
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("expected updatedAt after createdAt, got %v / %v", updated.UpdatedAt, updated.CreatedAt)
	}

	del, err := provider.Delete(ctx, "m-1", "p-1")
	if err != nil {
		t.Fatalf("delete command failed: %v", err)
	}
	if !del.ReadOnly() {
		t.Error("expected delete command to be read-only")
	}
	deleted, err := del.Save(ctx)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted.Version != 3 {
		t.Errorf("expected version 3, got %d", deleted.Version)
	}
	if deleted.IsDeleted == nil || !*deleted.IsDeleted || deleted.DeletedAt == nil {
		t.Error("expected soft-delete fields to be set")
	}

	gone, err := provider.Read(ctx, "m-1", "p-1")
	if err != nil {
		t.Fatalf("read after delete failed: %v", err)
	}
	if gone != nil {
		t.Error("expected deleted item to be unreadable")
	}
}

func TestReadMissingReturnsNil(t *testing.T) {
	provider := newMessageProvider(t, memory.New())
	result, err := provider.Read(context.Background(), "nope", "p-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result, got %+v", result)
	}
}

func TestUpdateMissingReturnsNil(t *testing.T) {
	provider := newMessageProvider(t, memory.New())

	cmd, err := provider.Update(context.Background(), "nope", "p-1")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if cmd != nil {
		t.Errorf("expected nil command for a missing item, got %+v", cmd)
	}

	del, err := provider.Delete(context.Background(), "nope", "p-1")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if del != nil {
		t.Errorf("expected nil command for a missing item, got %+v", del)
	}
}

func TestDomainValidatorRuns(t *testing.T) {
	backend := memory.New()
	provider, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
		TypeName:   "message",
		Operations: itemstore.OperationsAll,
		Validator: func(m *testmodels.Message) error {
			if m.Message == "" {
				return errors.NewValidationError("message", "must not be empty")
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	create, err := provider.Create("m-1", "p-1")
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}
	if _, err := create.Save(context.Background()); !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	// A failed validation consumes the command.
	create.Item().Message = "now valid"
	if _, err := create.Save(context.Background()); !stderrors.Is(err, errors.ErrCommandConsumed) {
		t.Errorf("expected command consumed, got %v", err)
	}
}

func TestSaveGeneratesEventWithChanges(t *testing.T) {
	backend := memory.New()
	provider := newMessageProvider(t, backend)
	ctx := itemstore.WithTrace(context.Background(), "trace-1", "span-1")

	create, err := provider.Create("m-1", "p-1")
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}
	create.Item().Message = "first"
	if _, err := create.Save(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	update, err := provider.Update(ctx, "m-1", "p-1")
	if err != nil {
		t.Fatalf("update command failed: %v", err)
	}
	update.Item().Message = "second"
	if _, err := update.Save(ctx); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	events := readEvents(t, backend)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	var updateEvent *storagemodels.ItemEvent
	for i := range events {
		if events[i].SaveAction == storagemodels.SaveActionUpdated {
			updateEvent = &events[i]
		}
	}
	if updateEvent == nil {
		t.Fatal("no update event found")
	}

	if updateEvent.RelatedID != "m-1" || updateEvent.RelatedTypeName != "message" {
		t.Errorf("unexpected related fields: %+v", updateEvent)
	}
	if updateEvent.TraceID != "trace-1" || updateEvent.SpanID != "span-1" {
		t.Errorf("expected trace correlation, got %q/%q", updateEvent.TraceID, updateEvent.SpanID)
	}

	// The update only touched the message field; version, updatedAt and
	// etag changes belong to the write itself, not the caller's mutation.
	if len(updateEvent.Changes) != 1 {
		t.Fatalf("expected exactly one change, got %+v", updateEvent.Changes)
	}
	change := updateEvent.Changes[0]
	if change.PropertyName != "/message" {
		t.Errorf("expected /message, got %q", change.PropertyName)
	}
	if old, _ := change.OldValue.StringValue(); old != "first" {
		t.Errorf("expected old value first, got %v", change.OldValue)
	}
	if newV, _ := change.NewValue.StringValue(); newV != "second" {
		t.Errorf("expected new value second, got %v", change.NewValue)
	}
}

func TestDisableChangeTracking(t *testing.T) {
	backend := memory.New()
	provider, err := itemstore.New[testmodels.Message](backend, itemstore.Config[testmodels.Message]{
		TypeName:              "message",
		Operations:            itemstore.OperationsAll,
		DisableChangeTracking: true,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	create, err := provider.Create("m-1", "p-1")
	if err != nil {
		t.Fatalf("create command failed: %v", err)
	}
	create.Item().Message = "hello"
	if _, err := create.Save(context.Background()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	events := readEvents(t, backend)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Changes != nil {
		t.Errorf("expected no changes, got %+v", events[0].Changes)
	}
}

// readEvents queries the backend directly for stored audit events.
func readEvents(t *testing.T, backend *memory.Store) []storagemodels.ItemEvent {
	t.Helper()

	q := backend.CreateQueryable(storagemodels.EventTypeName)
	items, errs := backend.Query(context.Background(), q)

	var events []storagemodels.ItemEvent
	for raw := range items {
		var ev storagemodels.ItemEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		events = append(events, ev)
	}
	if err := <-errs; err != nil {
		t.Fatalf("event query failed: %v", err)
	}
	return events
}
