// Package main provides the entry point for the filizer CLI.
//
// filizer walks a directory tree, fingerprints every file and asks a remote
// registry whether the file is new or a duplicate. The registry may direct a
// copy, move or delete of a duplicate, and new files are reported back to it.
//
// Usage:
//
//	filizer scan [path] --url https://registry.example.com/api/files
//	filizer history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
