// Package scanner walks a directory tree and feeds every regular file
// through the per-file pipeline.
//
// The walk is depth-first in lexical order. Directories whose name is in the
// exclude list are pruned before they are entered, at any depth; the scan
// root itself is never pruned. Per-file failures are counted and the walk
// moves on. Only a rejected registry credential or a cancelled context stops
// the walk early, and the counters gathered so far are still reported.
package scanner
