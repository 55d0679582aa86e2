package scraper

import "errors"

// ErrNoCandidate means every extraction stage was exhausted without an
// in-bounds value. Non-fatal: the product is skipped this run. Malformed
// documents and JSON payloads surface as this too, since a page that cannot
// be parsed yields no candidates.
var ErrNoCandidate = errors.New("no in-bounds price candidate found")
