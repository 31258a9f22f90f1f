/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/itemstore/storagemodels"
)

func TestChangesScalarReplace(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"message":"m1","count":1}`),
		[]byte(`{"message":"m2","count":1}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	assert.Equal(t, "/message", changes[0].PropertyName)
	assert.True(t, changes[0].OldValue.Equal(storagemodels.String("m1")))
	assert.True(t, changes[0].NewValue.Equal(storagemodels.String("m2")))
}

func TestChangesIdenticalSnapshotsReturnNil(t *testing.T) {
	doc := []byte(`{"id":"X","nested":{"a":[1,2,3],"b":true},"note":null}`)

	changes, err := Changes(doc, doc)
	require.NoError(t, err)
	assert.Nil(t, changes, "diffing a snapshot against itself must return nil, not an empty list")
}

func TestChangesFieldOrderIsIrrelevant(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"a":1,"b":2}`),
		[]byte(`{"b":2,"a":1}`),
	)
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestChangesObjectAddExpandsToLeaves(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"id":"X"}`),
		[]byte(`{"id":"X","address":{"city":"Oakville","zip":"L6H"}}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	// Sorted by path: /address/city before /address/zip.
	assert.Equal(t, "/address/city", changes[0].PropertyName)
	assert.True(t, changes[0].OldValue.IsNull())
	assert.True(t, changes[0].NewValue.Equal(storagemodels.String("Oakville")))
	assert.Equal(t, "/address/zip", changes[1].PropertyName)
}

func TestChangesObjectRemoveExpandsToLeaves(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"id":"X","address":{"city":"Oakville"}}`),
		[]byte(`{"id":"X"}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 1)

	assert.Equal(t, "/address/city", changes[0].PropertyName)
	assert.True(t, changes[0].OldValue.Equal(storagemodels.String("Oakville")))
	assert.True(t, changes[0].NewValue.IsNull())
}

func TestChangesArraysComparedPositionally(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"tags":["a","b"]}`),
		[]byte(`{"tags":["a","c","d"]}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "/tags/1", changes[0].PropertyName)
	assert.True(t, changes[0].OldValue.Equal(storagemodels.String("b")))
	assert.True(t, changes[0].NewValue.Equal(storagemodels.String("c")))

	// Element beyond the shorter array compares against null.
	assert.Equal(t, "/tags/2", changes[1].PropertyName)
	assert.True(t, changes[1].OldValue.IsNull())
	assert.True(t, changes[1].NewValue.Equal(storagemodels.String("d")))
}

func TestChangesTypeSwitchAtSamePath(t *testing.T) {
	// A scalar replaced by an object merges at distinct leaf paths: the
	// scalar's own path goes to null, the object's leaves appear.
	changes, err := Changes(
		[]byte(`{"a":"x"}`),
		[]byte(`{"a":{"b":1}}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "/a", changes[0].PropertyName)
	assert.True(t, changes[0].NewValue.IsNull())
	assert.Equal(t, "/a/b", changes[1].PropertyName)
	assert.True(t, changes[1].NewValue.Equal(storagemodels.Number(1)))
}

func TestChangesNullAndAbsentAreEquivalent(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"id":"X","note":null}`),
		[]byte(`{"id":"X"}`),
	)
	require.NoError(t, err)
	assert.Nil(t, changes)
}

func TestChangesScalarKinds(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"s":"a","n":1,"b":false,"z":null}`),
		[]byte(`{"s":"b","n":2.5,"b":true,"z":"set"}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 4)

	byPath := make(map[string]storagemodels.PropertyChange, len(changes))
	for _, c := range changes {
		byPath[c.PropertyName] = c
	}
	assert.True(t, byPath["/n"].NewValue.Equal(storagemodels.Number(2.5)))
	assert.True(t, byPath["/b"].NewValue.Equal(storagemodels.Bool(true)))
	assert.True(t, byPath["/z"].OldValue.IsNull())
	assert.True(t, byPath["/z"].NewValue.Equal(storagemodels.String("set")))
}

func TestChangesEscapesPointerTokens(t *testing.T) {
	changes, err := Changes(
		[]byte(`{"a/b":1,"c~d":2}`),
		[]byte(`{"a/b":3,"c~d":4}`),
	)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, "/a~1b", changes[0].PropertyName)
	assert.Equal(t, "/c~0d", changes[1].PropertyName)
}

func TestChangesInvalidJSON(t *testing.T) {
	_, err := Changes([]byte(`{`), []byte(`{}`))
	assert.Error(t, err)

	_, err = Changes([]byte(`{}`), []byte(`not json`))
	assert.Error(t, err)
}

// Applying the computed changes onto the baseline must reconstruct the
// current snapshot's leaf values: for every change, the new value equals
// the current document's leaf at that path.
func TestChangesReconstructCurrentLeaves(t *testing.T) {
	before := []byte(`{"id":"X","message":"m1","tags":["a","b"],"meta":{"views":10}}`)
	after := []byte(`{"id":"X","message":"m2","tags":["a"],"meta":{"views":11,"stars":2}}`)

	changes, err := Changes(before, after)
	require.NoError(t, err)
	require.NotEmpty(t, changes)

	// Leaves of the current snapshot, obtained by diffing from an empty
	// document.
	currentLeaves, err := Changes([]byte(`{}`), after)
	require.NoError(t, err)
	byPath := make(map[string]storagemodels.PropertyValue, len(currentLeaves))
	for _, c := range currentLeaves {
		byPath[c.PropertyName] = c.NewValue
	}

	for _, c := range changes {
		assert.True(t, c.NewValue.Equal(byPath[c.PropertyName]),
			"change at %s must carry the current leaf value", c.PropertyName)
	}
}
