package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skyforgehq/playpub/internal/shared"
)

// Record is one committed publish.
type Record struct {
	ID            string    `json:"id"`
	PackageName   string    `json:"package_name"`
	Track         string    `json:"track"`
	ReleaseName   string    `json:"release_name"`
	VersionCode   int64     `json:"version_code"`
	EditID        string    `json:"edit_id"`
	ArtifactPath  string    `json:"artifact_path"`
	ArtifactBytes int64     `json:"artifact_bytes"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persists publish records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store with the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Init creates the publishes table if it does not exist.
func (s *Store) Init() error {
	schema := `
		CREATE TABLE IF NOT EXISTS publishes (
			id TEXT PRIMARY KEY,
			package_name TEXT NOT NULL,
			track TEXT NOT NULL,
			release_name TEXT NOT NULL,
			version_code INTEGER NOT NULL,
			edit_id TEXT NOT NULL,
			artifact_path TEXT NOT NULL,
			artifact_bytes INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_publishes_package ON publishes(package_name, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create publishes table: %w", err)
	}
	return nil
}

// Insert records a publish with a generated id and timestamp.
func (s *Store) Insert(rec *Record) error {
	if rec.PackageName == "" {
		return fmt.Errorf("package name is required")
	}

	rec.ID = shared.GenerateID()
	rec.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO publishes (id, package_name, track, release_name, version_code, edit_id, artifact_path, artifact_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, rec.ID, rec.PackageName, rec.Track, rec.ReleaseName,
		rec.VersionCode, rec.EditID, rec.ArtifactPath, rec.ArtifactBytes, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert publish record: %w", err)
	}

	return nil
}

// List returns records newest first, optionally filtered by package.
// A limit of 0 returns all records.
func (s *Store) List(packageName string, limit int) ([]Record, error) {
	query := `
		SELECT id, package_name, track, release_name, version_code, edit_id, artifact_path, artifact_bytes, created_at
		FROM publishes
	`
	var args []any
	if packageName != "" {
		query += " WHERE package_name = ?"
		args = append(args, packageName)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query publishes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PackageName, &rec.Track, &rec.ReleaseName,
			&rec.VersionCode, &rec.EditID, &rec.ArtifactPath, &rec.ArtifactBytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan publish record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate publishes: %w", err)
	}

	return records, nil
}

// LastVersionCode returns the most recently recorded version code for a
// package, or 0 when the package has no history.
func (s *Store) LastVersionCode(packageName string) (int64, error) {
	query := `
		SELECT version_code FROM publishes
		WHERE package_name = ?
		ORDER BY created_at DESC LIMIT 1
	`

	var code int64
	err := s.db.QueryRow(query, packageName).Scan(&code)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query last version code: %w", err)
	}
	return code, nil
}
