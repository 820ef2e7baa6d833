// Package registry provides the HTTP client for the remote file registry.
//
// The registry answers two requests:
//   - Validate: a GET with exact-match filters name_eq, parent_dir_eq and
//     md5_eq, answered with a JSON array of prior entries
//   - Submit: a POST carrying a file's metadata as JSON
//
// Both requests carry Content-Type: application/json and, when a token is
// configured, a bearer Authorization header. Server errors (500, 502, 503,
// 504) are retried with exponential backoff; every other failure is
// returned to the caller right away. A 401 is reported as ErrUnauthorized,
// which callers treat as fatal for the whole scan.
package registry
