// Package embedded ships the declared export schema inside the binary so the
// pipeline can validate artifacts even when the registry tree carries no
// schema document of its own.
package embedded

import _ "embed"

// SchemaYAML is the declared product index export schema.
//
//go:embed schema/product_index.schema.yaml
var SchemaYAML []byte
