// Package domain defines the core entities for llmprint.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - GenerationRequest / GenerationResult: one call to a text generator
//   - GeneratedDocument: a generated text before it is persisted
//   - MetadataRow: one row of the corpus metadata table
//   - Table: a generic tabular dataset (metadata, features, merged output)
//   - Plan: which models, genres and prompts make up a corpus
//   - Run / DocumentRecord: the generation ledger
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
