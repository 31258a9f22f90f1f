/*
Package itemstore provides a storage-agnostic data-access layer for Go
applications: typed CRUD, atomic multi-item batches, lazy queries,
optimistic concurrency and automatic audit events with field-level diffing.

Item types embed storagemodels.BaseItem and are persisted through a
Provider bound to one backend:

	type Message struct {
	    storagemodels.BaseItem
	    Message string `json:"message"`
	}

	backend := memory.New()
	provider, err := itemstore.New(backend, itemstore.Config[Message]{
	    TypeName:   "message",
	    Operations: itemstore.OperationsAll,
	})

	cmd, err := provider.Create("X", "P")
	cmd.Item().Message = "m1"
	saved, err := cmd.Save(ctx)

Every mutation either fully succeeds, returning the saved item with its new
version and ETag, or fully fails with one typed error from the errors
package. Each successful save also writes an immutable ItemEvent audit
record, in the same atomic batch slot, recording what changed field by
field.

Key properties:
  - Optimistic concurrency: a stale ETag fails the write, never overwrites
  - Batch atomicity: a multi-item save commits fully or not at all, with
    per-slot failure reporting
  - Soft delete: deleted items disappear from reads and queries but remain
    stored
  - Lazy queries: predicate/order/paging pipelines stream results with
    cancellation checked between items

Backends implement the four-operation contract in the datastore package;
the memory backend is the reference implementation, the ddb backend targets
DynamoDB.
*/
package itemstore
