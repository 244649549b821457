package reactive

import "errors"

// ErrNotArray is returned when an array mutation is called on a node whose
// value is not a []any.
var ErrNotArray = errors.New("reactive: value is not an array")
