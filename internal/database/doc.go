// Package database stores scan history in SQLite.
//
// Every finished scan is saved as one row holding the report JSON together
// with the counters, so the history command can list past runs without
// decoding every report. The store uses modernc.org/sqlite, which needs no
// CGO, and lives in a single file under the XDG data directory.
package database
