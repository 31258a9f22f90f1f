/*
Package diff compares two serialized item snapshots and produces the
field-level property changes recorded on audit events.

The engine works on the JSON value model: objects, arrays and the four leaf
scalars (null, string, number, bool). Only leaf scalars yield changes; an
added or removed object expands into one change per leaf. Paths use JSON
Pointer syntax and the result is sorted by path, so the output is
deterministic regardless of field order in the input documents.
*/
package diff
