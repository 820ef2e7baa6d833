package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/filizer/internal/model"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the database directory.
const FileName = "filizer.db"

// storedTimeFormat is fixed width so that stored timestamps sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrReportNotFound is returned when no stored report matches a lookup.
	ErrReportNotFound = errors.New("scan report not found")

	// ErrDatabaseNotFound is returned by Open when the database is missing
	// and CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")
)

// ScanDB stores scan reports.
type ScanDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and the database file when
	// they are missing. When false, Open fails for a missing database.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the database in dbDir.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

func (sdb *ScanDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		registry TEXT NOT NULL,
		preview INTEGER NOT NULL DEFAULT 0,
		aborted INTEGER NOT NULL DEFAULT 0,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		new_count INTEGER NOT NULL DEFAULT 0,
		duplicate_count INTEGER NOT NULL DEFAULT 0,
		path_match_count INTEGER NOT NULL DEFAULT 0,
		failed_count INTEGER NOT NULL DEFAULT 0,
		actions_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_reports_root ON scan_reports(root);
	CREATE INDEX IF NOT EXISTS idx_reports_started ON scan_reports(started_at);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanReport stores report and sets report.ID to the new row ID.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO scan_reports (
		root, registry, preview, aborted, started_at, finished_at,
		new_count, duplicate_count, path_match_count, failed_count, actions_count,
		report_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stats := report.Stats
	result, err := sdb.db.ExecContext(ctx, query,
		report.Root,
		report.Registry,
		report.Preview,
		report.Aborted,
		report.StartedAt.UTC().Format(storedTimeFormat),
		report.FinishedAt.UTC().Format(storedTimeFormat),
		stats.New,
		stats.Duplicate,
		stats.PathMatch,
		stats.Failed,
		stats.ActionsTaken,
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read scan report id: %w", err)
	}
	report.ID = id
	return id, nil
}

// ScanReportMetadata summarizes a stored report without decoding it.
type ScanReportMetadata struct {
	ID         int64
	Root       string
	Registry   string
	Preview    bool
	Aborted    bool
	StartedAt  time.Time
	FinishedAt time.Time
	Stats      model.Stats
}

// ListScanReports returns the metadata of the most recent reports, newest
// first. A limit of zero or less returns every report.
func (sdb *ScanDB) ListScanReports(ctx context.Context, limit int) ([]ScanReportMetadata, error) {
	return sdb.listScanReports(ctx, "", limit)
}

// ListScanReportsForRoot is ListScanReports restricted to scans of root.
func (sdb *ScanDB) ListScanReportsForRoot(ctx context.Context, root string, limit int) ([]ScanReportMetadata, error) {
	return sdb.listScanReports(ctx, root, limit)
}

func (sdb *ScanDB) listScanReports(ctx context.Context, root string, limit int) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, root, registry, preview, aborted, started_at, finished_at,
		new_count, duplicate_count, path_match_count, failed_count, actions_count
	FROM scan_reports
	`
	args := make([]any, 0, 2)
	if root != "" {
		query += " WHERE root = ?"
		args = append(args, root)
	}
	query += " ORDER BY started_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan reports: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var (
			meta              ScanReportMetadata
			started, finished string
		)
		if err := rows.Scan(
			&meta.ID,
			&meta.Root,
			&meta.Registry,
			&meta.Preview,
			&meta.Aborted,
			&started,
			&finished,
			&meta.Stats.New,
			&meta.Stats.Duplicate,
			&meta.Stats.PathMatch,
			&meta.Stats.Failed,
			&meta.Stats.ActionsTaken,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetScanReportByID returns the stored report with the given ID.
func (sdb *ScanDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, `SELECT report_json FROM scan_reports WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}
	return decodeReport(id, reportJSON)
}

// GetLatestScanReport returns the most recent report for root.
func (sdb *ScanDB) GetLatestScanReport(ctx context.Context, root string) (*model.ScanReport, error) {
	query := `
	SELECT id, report_json FROM scan_reports
	WHERE root = ?
	ORDER BY started_at DESC, id DESC
	LIMIT 1
	`

	var (
		id         int64
		reportJSON string
	)
	err := sdb.db.QueryRowContext(ctx, query, root).Scan(&id, &reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: root %s", ErrReportNotFound, root)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}
	return decodeReport(id, reportJSON)
}

func decodeReport(id int64, reportJSON string) (*model.ScanReport, error) {
	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id
	return &report, nil
}

// timestampFormats are the layouts timestamps may be stored in.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with the first matching layout. It returns the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
