// Package model defines the core data structures used throughout filizer.
//
// This package contains the following main types:
//   - FileRecord: The metadata submitted to the registry for one file
//   - RegistryMatch: A prior registry entry returned by a validation query
//   - Outcome: The classification of a scanned file
//   - Action: A remote-directed local action (copy, move, delete)
//   - FileScan: Per-file state carried through the pipeline steps
//   - Stats and ScanReport: The aggregated result of one scan
//
// Models live in their own package because the registry client, the
// pipeline, the report writers and the history store all share them.
package model
