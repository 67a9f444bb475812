package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a uniqueness
// constraint (e.g. a webhook event id seen before, or a payment intent
// already recorded in the ledger).
var ErrDuplicate = errors.New("duplicate")
