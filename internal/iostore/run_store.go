package iostore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hydrolab/hmpi/internal/contract"
	"github.com/hydrolab/hmpi/schema"
)

// Errors returned by RunStoreImpl lookups.
var (
	ErrNotFound      = errors.New("not found")
	ErrStoreDisabled = errors.New("run store is disabled")
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sqlx.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// driverFor maps a backend to its database/sql driver name.
func driverFor(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported backend: %s", backend)
	}
}

// NewRunStore creates a new RunStore with the specified backend.
// The standards table is seeded with the built-in limits when it is empty.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	driverName, err := driverFor(backend)
	if err != nil {
		return nil, err
	}

	var db *sqlx.DB
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunDBFilePath()
		}
		db, err = sqlx.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		db, err = sqlx.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname?parseTime=true", err)
		}

	case schema.PostgreSQLBackend:
		db, err = sqlx.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=... user=... dbname=...", err)
		}
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	store := &RunStoreImpl{db: db, backend: backend, driverName: driverName}
	if err := store.seedStandards(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to seed metal standards: %w", err)
	}
	contract.Logger.Debug().Str("backend", string(backend)).Msg("run store ready")
	return store, nil
}

// createTables creates the run tracking tables.
func createTables(db *sqlx.DB, backend schema.DatabaseBackend) error {
	for i, query := range createTableQueries(backend) {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", allTables[i], err)
		}
	}
	return nil
}

func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

func (rs *RunStoreImpl) table(name string) string {
	return quoteTableName(name, rs.backend)
}

// upsertQuery builds an insert-or-replace statement with ? placeholders.
func (rs *RunStoreImpl) upsertQuery(table, key string, cols []string) string {
	quoted := rs.table(table)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	colList := strings.Join(cols, ", ")

	var updates []string
	for _, c := range cols {
		if c == key {
			continue
		}
		switch rs.backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		default:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}

	switch rs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s`,
			quoted, colList, marks, strings.Join(updates, ", "))
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s`,
			quoted, colList, marks, key, strings.Join(updates, ", "))
	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quoted, colList, marks)
	}
}

type runRow struct {
	RunID            int64   `db:"run_id"`
	SampleID         string  `db:"sample_id"`
	SampleName       *string `db:"sample_name"`
	Location         *string `db:"location_name"`
	CalculatedAt     dbTime  `db:"calculated_at"`
	Scheme           *string `db:"scheme_name"`
	StandardsVersion int32   `db:"standards_version"`
	Classification   string  `db:"classification"`
	Overall          string  `db:"overall_classification"`
	Concentrations   string  `db:"concentrations"`
	Violations       string  `db:"threshold_violations"`
	Intermediates    *string `db:"intermediate_values"`
	SampleMeta       *string `db:"sample_meta"`
}

func (r runRow) record() schema.RunRecord {
	return schema.RunRecord{
		RunID:            r.RunID,
		SampleID:         r.SampleID,
		SampleName:       r.SampleName,
		Location:         r.Location,
		CalculatedAt:     r.CalculatedAt.Time,
		Scheme:           r.Scheme,
		StandardsVersion: r.StandardsVersion,
		Classification:   r.Classification,
		Overall:          r.Overall,
		Concentrations:   r.Concentrations,
		Violations:       r.Violations,
		Intermediates:    r.Intermediates,
		SampleMeta:       r.SampleMeta,
	}
}

const runColumns = `run_id, sample_id, sample_name, location_name, calculated_at, scheme_name, standards_version,
	classification, overall_classification, concentrations, threshold_violations, intermediate_values, sample_meta`

type indexRow struct {
	RunID          int64    `db:"run_id"`
	IndexName      string   `db:"index_name"`
	Metal          string   `db:"metal"`
	Value          *float64 `db:"value"`
	Classification string   `db:"classification"`
	Contributing   int32    `db:"contributing"`
	Formula        string   `db:"formula"`
}

func (r indexRow) record() schema.IndexResultRecord {
	return schema.IndexResultRecord(r)
}

const indexColumns = `run_id, index_name, metal, value, classification, contributing, formula`

// RecordRun stores a run and its index rows in one transaction.
func (rs *RunStoreImpl) RecordRun(run schema.RunRecord, results []schema.IndexResultRecord) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	tx, err := rs.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	args := []any{
		run.SampleID, run.SampleName, run.Location, formatTime(run.CalculatedAt, rs.backend), run.Scheme,
		run.StandardsVersion, run.Classification, run.Overall, run.Concentrations, run.Violations,
		run.Intermediates, run.SampleMeta,
	}
	insert := fmt.Sprintf(`INSERT INTO %s (sample_id, sample_name, location_name, calculated_at, scheme_name,
		standards_version, classification, overall_classification, concentrations, threshold_violations,
		intermediate_values, sample_meta) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, rs.table(runsTable))

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		err = tx.QueryRowx(tx.Rebind(insert+" RETURNING run_id"), args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = tx.Exec(insert, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert calculation run: %w", err)
	}

	stmt, err := tx.Preparex(tx.Rebind(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rs.table(indexResultsTable), indexColumns)))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare index insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range results {
		if _, err := stmt.Exec(runID, r.IndexName, r.Metal, r.Value, r.Classification, r.Contributing, r.Formula); err != nil {
			return 0, fmt.Errorf("failed to insert %s result: %w", r.IndexName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	contract.Logger.Debug().Int64("run_id", runID).Str("sample_id", run.SampleID).Msg("recorded run")
	return runID, nil
}

// GetRun loads a run and its index rows.
func (rs *RunStoreImpl) GetRun(runID int64) (schema.RunRecord, []schema.IndexResultRecord, error) {
	if rs.disabled() {
		return schema.RunRecord{}, nil, ErrStoreDisabled
	}

	var row runRow
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE run_id = ?`, runColumns, rs.table(runsTable))
	if err := rs.db.Get(&row, rs.db.Rebind(query), runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.RunRecord{}, nil, fmt.Errorf("run %d: %w", runID, ErrNotFound)
		}
		return schema.RunRecord{}, nil, fmt.Errorf("failed to load run %d: %w", runID, err)
	}

	var rows []indexRow
	query = fmt.Sprintf(`SELECT %s FROM %s WHERE run_id = ? ORDER BY index_name, metal`, indexColumns, rs.table(indexResultsTable))
	if err := rs.db.Select(&rows, rs.db.Rebind(query), runID); err != nil {
		return schema.RunRecord{}, nil, fmt.Errorf("failed to load results for run %d: %w", runID, err)
	}

	results := make([]schema.IndexResultRecord, len(rows))
	for i, r := range rows {
		results[i] = r.record()
	}
	return row.record(), results, nil
}

// ListRuns returns runs newest first.
func (rs *RunStoreImpl) ListRuns(limit int) ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY run_id DESC`, runColumns, rs.table(runsTable))
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var rows []runRow
	if err := rs.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query calculation runs: %w", err)
	}
	records := make([]schema.RunRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// ListIndexResults returns every index row.
func (rs *RunStoreImpl) ListIndexResults() ([]schema.IndexResultRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	var rows []indexRow
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY run_id, index_name, metal`, indexColumns, rs.table(indexResultsTable))
	if err := rs.db.Select(&rows, query); err != nil {
		return nil, fmt.Errorf("failed to query index results: %w", err)
	}
	records := make([]schema.IndexResultRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	runs := rs.table(runsTable)
	if err := rs.db.Get(&status.TotalRuns, fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last struct {
			RunID        int64  `db:"run_id"`
			CalculatedAt dbTime `db:"calculated_at"`
		}
		if err := rs.db.Get(&last, fmt.Sprintf("SELECT run_id, calculated_at FROM %s ORDER BY run_id DESC LIMIT 1", runs)); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunID = last.RunID
		status.LastRunTime = last.CalculatedAt.Time

		var oldest dbTime
		if err := rs.db.Get(&oldest, fmt.Sprintf("SELECT calculated_at FROM %s ORDER BY run_id ASC LIMIT 1", runs)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time

		if err := rs.db.Get(&status.TotalSamples, fmt.Sprintf("SELECT COUNT(DISTINCT sample_id) FROM %s", runs)); err != nil {
			return status, fmt.Errorf("failed to count samples: %w", err)
		}
	}

	for _, table := range allTables {
		var count int64
		if err := rs.db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", rs.table(table))); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t.UTC()
	}
}

// dbTime scans timestamps stored natively or as text.
type dbTime struct {
	time.Time
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05.999999999-07:00"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("failed to parse timestamp %q", s)
}

// marshalJSON is a small helper for the JSON text columns.
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
