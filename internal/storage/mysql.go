package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"fxd/internal/domain"
)

const (
	createRunsTable = "CREATE TABLE IF NOT EXISTS fxd_runs (" +
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
		"meta JSON NOT NULL, " +
		"coverage JSON NOT NULL)"
	createFailuresTable = "CREATE TABLE IF NOT EXISTS fxd_failures (" +
		"run_id BIGINT NOT NULL, " +
		"test_name VARCHAR(255) NOT NULL, " +
		"group_path VARCHAR(255) NOT NULL, " +
		"file_path VARCHAR(1024) NOT NULL, " +
		"kind VARCHAR(32) NOT NULL, " +
		"message MEDIUMTEXT, " +
		"expected MEDIUMTEXT, " +
		"actual MEDIUMTEXT, " +
		"diff MEDIUMTEXT, " +
		"resolved BOOLEAN NOT NULL DEFAULT FALSE, " +
		"INDEX (run_id))"

	insertRun      = "INSERT INTO fxd_runs (meta, coverage) VALUES (?, ?)"
	updateRun      = "UPDATE fxd_runs SET meta = ?, coverage = ? WHERE id = ?"
	selectLastRun  = "SELECT id, meta, coverage FROM fxd_runs ORDER BY id DESC LIMIT 1"
	deleteFailures = "DELETE FROM fxd_failures WHERE run_id = ?"
	insertFailure  = "INSERT INTO fxd_failures " +
		"(run_id, test_name, group_path, file_path, kind, message, expected, actual, diff, resolved) " +
		"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	selectFailures = "SELECT test_name, group_path, file_path, kind, message, expected, actual, diff, resolved " +
		"FROM fxd_failures WHERE run_id = ? ORDER BY group_path, file_path"
)

// MySQLStorage keeps every run in a MySQL database; Load returns the latest.
type MySQLStorage struct {
	db *sql.DB
}

// OpenMySQL connects to dsn and creates the result tables if needed
func OpenMySQL(dsn string) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to results database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping results database: %w", err)
	}
	s := NewMySQLStorage(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMySQLStorage wraps an open database
func NewMySQLStorage(db *sql.DB) *MySQLStorage {
	return &MySQLStorage{db: db}
}

// Migrate creates the result tables
func (s *MySQLStorage) Migrate() error {
	for _, stmt := range []string{createRunsTable, createFailuresTable} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create result tables: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (s *MySQLStorage) Close() error {
	return s.db.Close()
}

// Save stores the run as a new row together with its failures
func (s *MySQLStorage) Save(run domain.Run) error {
	return s.inTx(func(tx *sql.Tx) error {
		return s.insert(tx, BuildOutput(run))
	})
}

// SaveOutput replaces the latest run with output, or inserts it when no
// run is stored yet.
func (s *MySQLStorage) SaveOutput(output *domain.RunResultsOutput) error {
	return s.inTx(func(tx *sql.Tx) error {
		var id int64
		var meta, coverage []byte
		err := tx.QueryRow(selectLastRun).Scan(&id, &meta, &coverage)
		if errors.Is(err, sql.ErrNoRows) {
			return s.insert(tx, output)
		}
		if err != nil {
			return fmt.Errorf("find latest run: %w", err)
		}

		meta, coverage, err = encode(output)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(updateRun, meta, coverage, id); err != nil {
			return fmt.Errorf("update run: %w", err)
		}
		if _, err := tx.Exec(deleteFailures, id); err != nil {
			return fmt.Errorf("clear failures: %w", err)
		}
		return insertFailures(tx, id, output.Details)
	})
}

// Load reads the latest run and its failures
func (s *MySQLStorage) Load() (*domain.RunResultsOutput, error) {
	var id int64
	var meta, coverage []byte
	if err := s.db.QueryRow(selectLastRun).Scan(&id, &meta, &coverage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("no stored runs")
		}
		return nil, fmt.Errorf("read latest run: %w", err)
	}

	output := &domain.RunResultsOutput{Details: make([]domain.Failure, 0)}
	if err := json.Unmarshal(meta, &output.Meta); err != nil {
		return nil, fmt.Errorf("parse run meta: %w", err)
	}
	if err := json.Unmarshal(coverage, &output.Coverage); err != nil {
		return nil, fmt.Errorf("parse run coverage: %w", err)
	}

	rows, err := s.db.Query(selectFailures, id)
	if err != nil {
		return nil, fmt.Errorf("read failures: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var f domain.Failure
		var message, expected, actual, diff sql.NullString
		if err := rows.Scan(&f.TestName, &f.Group, &f.FilePath, &f.Kind,
			&message, &expected, &actual, &diff, &f.Resolved); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		f.Message, f.Expected, f.Actual, f.Diff = message.String, expected.String, actual.String, diff.String
		output.Details = append(output.Details, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read failures: %w", err)
	}
	return output, nil
}

func (s *MySQLStorage) insert(tx *sql.Tx, output *domain.RunResultsOutput) error {
	meta, coverage, err := encode(output)
	if err != nil {
		return err
	}
	res, err := tx.Exec(insertRun, meta, coverage)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return insertFailures(tx, id, output.Details)
}

func (s *MySQLStorage) inTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertFailures(tx *sql.Tx, runID int64, failures []domain.Failure) error {
	for _, f := range failures {
		if _, err := tx.Exec(insertFailure, runID, f.TestName, f.Group, f.FilePath, f.Kind,
			f.Message, f.Expected, f.Actual, f.Diff, f.Resolved); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.FilePath, err)
		}
	}
	return nil
}

func encode(output *domain.RunResultsOutput) (meta, coverage []byte, err error) {
	if meta, err = json.Marshal(output.Meta); err != nil {
		return nil, nil, fmt.Errorf("marshal run meta: %w", err)
	}
	cov := output.Coverage
	if cov == nil {
		cov = []domain.CoverageResult{}
	}
	if coverage, err = json.Marshal(cov); err != nil {
		return nil, nil, fmt.Errorf("marshal run coverage: %w", err)
	}
	return meta, coverage, nil
}
