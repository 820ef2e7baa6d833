// Package action performs the local file actions a registry can direct for
// duplicate files: copy, move and delete.
//
// Every action is reported as a Result instead of a bare error. Filesystem
// failures are categorized (permission denied, not found, no space) so the
// scanner can log them and keep going. Deletion asks for confirmation unless
// the executor is forced, and a preview executor only logs what it would do.
package action
