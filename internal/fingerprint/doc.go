// Package fingerprint computes content digests used as duplicate identity.
//
// Files are streamed through MD5 in fixed-size blocks so that a file is
// never loaded into memory as a whole. MD5 identifies content for
// deduplication; it is not used for security.
package fingerprint
