package sstable

import "errors"

// ErrMalformedSST is returned by Open when a file's footer or meta region
// cannot be parsed.
var ErrMalformedSST = errors.New("sstable: malformed file")
