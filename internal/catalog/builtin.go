package catalog

import (
	_ "embed"
)

// builtinCatalog is a compact bright-star catalog (mag < ~4.7) in the same
// record format as the Yale Bright Star short export. Coordinates are J2000.
//
//go:embed builtin.json
var builtinCatalog []byte

// BuiltinRecords decodes the embedded catalog.
func BuiltinRecords() ([]Record, error) {
	return Decode(builtinCatalog)
}
