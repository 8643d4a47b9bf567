// Package tasks runs the long, many-request operations of the CLI and TUI with progress reporting.
//
// # Worker Pool
//
// [RunPool] fans jobs out to a bounded set of workers behind a shared [rate.Limiter] and returns
// the results in input order. It backs favorite status checks for carousels and library exports.
//
// # Library Operations
//
// [LibraryEngine] implements two operations:
//
//  1. [LibraryEngine.Library] : snapshot of the member's favorites
//     - Fetches the favorite IDs of every requested media type
//     - Resolves each ID to a title through the public media endpoints
//     - Items that fail to resolve keep their ref and are reported in the result
//
//  2. [LibraryEngine.Export] : write a snapshot to disk
//     - json, csv, markdown or txt through the formatter package
//     - Writes an export_manifest.json next to the files
//
// # Progress Reporting
//
// All operations accept an optional progress channel. Updates are sent with select/default so
// a slow or absent reader never blocks the operation.
package tasks
