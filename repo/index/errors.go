package index

import "errors"

// ErrCapacityExceeded is returned by inserts while the index holds Capacity live entries.
var ErrCapacityExceeded = errors.New("index is full")
