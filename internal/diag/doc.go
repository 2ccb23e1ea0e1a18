// Package diag defines the diagnostic model shared by the graph passes,
// the loaders and the CLI.
//
// # Purpose
//
//   - Record non-fatal findings of a pass run (unresolved observers,
//     uncalibrated values, unused calibration entries) without aborting it.
//   - Let producers emit diagnostics through a Reporter without coupling to
//     storage or formatting.
//
// Fatal conditions are not diagnostics: passes return errors for those.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Location – method, node and value the finding refers to.
//   - Notes – optional secondary messages.
//
// # Reporting
//
// Reporter is the producer-facing contract. BagReporter stores into a capped
// Bag, DedupReporter filters repeated findings and NopReporter drops
// everything. Bags from concurrent method runs are merged by the driver and
// sorted before rendering, so output order does not depend on scheduling.
package diag
