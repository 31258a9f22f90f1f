/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/suparena/itemstore/storagemodels"
)

// Changes computes the ordered property changes between two serialized item
// snapshots. Both arguments must be valid JSON documents.
//
// The comparison operates on leaf scalars only: objects and arrays never
// produce a change themselves, each of their leaf fields does. Array
// elements are compared positionally up to the longer array's length, a
// missing element comparing against null. Changes are keyed by JSON-Pointer
// path, a change whose old and new values are equal is dropped, and the
// result is sorted by path. Changes returns nil when the snapshots are
// equivalent.
func Changes(before, after []byte) ([]storagemodels.PropertyChange, error) {
	oldLeaves, err := leaves(before)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline snapshot: %w", err)
	}
	newLeaves, err := leaves(after)
	if err != nil {
		return nil, fmt.Errorf("failed to read current snapshot: %w", err)
	}

	paths := make(map[string]struct{}, len(oldLeaves)+len(newLeaves))
	for p := range oldLeaves {
		paths[p] = struct{}{}
	}
	for p := range newLeaves {
		paths[p] = struct{}{}
	}

	var changes []storagemodels.PropertyChange
	for p := range paths {
		oldVal := oldLeaves[p] // zero value is null for absent paths
		newVal := newLeaves[p]
		if oldVal.Equal(newVal) {
			continue
		}
		changes = append(changes, storagemodels.PropertyChange{
			PropertyName: p,
			OldValue:     oldVal,
			NewValue:     newVal,
		})
	}
	if len(changes) == 0 {
		return nil, nil
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].PropertyName < changes[j].PropertyName
	})
	return changes, nil
}

// leaves flattens a JSON document into its scalar leaves keyed by
// JSON-Pointer path.
func leaves(doc []byte) (map[string]storagemodels.PropertyValue, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	out := make(map[string]storagemodels.PropertyValue)
	if err := flatten(root, "", out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(v any, path string, out map[string]storagemodels.PropertyValue) error {
	switch tv := v.(type) {
	case map[string]any:
		for k, child := range tv {
			if err := flatten(child, path+"/"+escapePointer(k), out); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range tv {
			if err := flatten(child, path+"/"+strconv.Itoa(i), out); err != nil {
				return err
			}
		}
	default:
		pv, err := storagemodels.ValueOf(tv)
		if err != nil {
			return fmt.Errorf("at %q: %w", path, err)
		}
		out[path] = pv
	}
	return nil
}

// escapePointer applies RFC 6901 token escaping.
func escapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	token = strings.ReplaceAll(token, "/", "~1")
	return token
}
