// Package useful makes hosts safe to construct and explicit to upgrade.
//
// A host declares dependency slots. Every unassigned slot reads as a Null
// Object that answers its interface with benign defaults and performs no
// effect, so a freshly built host is inert. Recipes grouped into namespaces
// ("operational", "substitute", or any custom name) replace those defaults
// in one atomic Configure step. Telemetry slots hold per-host channels that
// deliver events to registered sinks.
//
// The repository is organised as:
//   - capability: named operation sets with benign default results
//   - null: the tagged-dispatcher Null Object and its typed adapters
//   - telemetry: channels, the Recorder test sink, and slog/capitan/trace sinks
//   - dependency: classes, slots, recipes, Configure and Call
//   - config: layered file and environment configuration for Configure
//   - cmd/usefulgen: generates capabilities and Null Object adapters
//   - cmd/useful: runs the purge reference host from the command line
//   - examples/purge: a SQLite-backed host with a dry-run substitute
package useful
