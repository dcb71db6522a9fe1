// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TextGenerator: One provider/model pair able to answer a prompt
//   - GeneratorFactory: Builds a TextGenerator for a plan's ModelSpec
//   - CorpusSink: Destination for corpus text files and the metadata table
//   - TableReader / TableWriter: Tabular file codec (metadata, features, merged)
//   - RowWriter: Streaming metadata rows, flushed one at a time
//   - PlanLoader: Reads generation plans
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BatchGenerator: Native batched generation. Without it, prompts are sent one by one.
//   - RunStore: Generation ledger. Without it, runs are not recorded.
//   - FeatureExtractor: External stylometric tool. Without it, features must be produced by hand.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
