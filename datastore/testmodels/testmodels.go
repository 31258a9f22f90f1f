/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds item types shared by tests across packages.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/itemstore/storagemodels"
)

// Message is the canonical test item: a few scalar fields, a slice and an
// optional timestamp.
type Message struct {
	storagemodels.BaseItem

	Message  string           `json:"message"`
	Priority int64            `json:"priority"`
	Tags     []string         `json:"tags,omitempty"`
	PostedAt *strfmt.DateTime `json:"postedAt,omitempty"`
}

// Account exercises schema-driven storage renames and transform
// strategies.
type Account struct {
	storagemodels.BaseItem

	Owner  string `json:"owner"`
	Secret string `json:"secret"`
}
