// Package pipeline runs the per-file processing steps of a scan in order.
//
// A scanned file passes through four steps:
//   - hash: compute the content digest
//   - validate: ask the registry whether the file is known
//   - action: run the action the registry directs for duplicates
//   - submit: report the file's metadata back to the registry
//
// Each step reads and fills in the shared *model.FileScan. The pipeline stops
// at the first step that returns an error. Errors wrapping ErrFatal mean the
// whole scan must stop, not just the current file.
package pipeline
