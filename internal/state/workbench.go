package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Status represents the state of a workbench.
type Status string

const (
	StatusProvisioning Status = "provisioning"
	StatusReady        Status = "ready"
	StatusFailed       Status = "failed"
	StatusRemoved      Status = "removed"
)

// ValidStatuses contains all valid workbench status values.
var ValidStatuses = []Status{
	StatusProvisioning,
	StatusReady,
	StatusFailed,
	StatusRemoved,
}

// IsValidStatus returns true if s is a valid status.
func IsValidStatus(s Status) bool {
	for _, valid := range ValidStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// Workbench represents a provisioned workbench in the state database.
type Workbench struct {
	ID         string    // 32 hex chars
	RepoURL    string    // URL the repository was cloned from
	RepoPath   string    // Absolute path to the clone
	BranchName string    // Branch created after cloning
	Manifest   string    // Dependency manifest file name
	VenvPath   string    // Path to the virtual environment (may be empty)
	ImageTag   string    // Sandbox image tag (may be empty)
	CreatedAt  time.Time // When the workbench was created
	Status     Status    // Current status
}

// ErrWorkbenchNotFound is returned when no workbench matches the given ID.
var ErrWorkbenchNotFound = errors.New("workbench not found")

// ErrAmbiguousPrefix is returned when an ID prefix matches multiple workbenches.
var ErrAmbiguousPrefix = errors.New("ambiguous workbench ID prefix")

// ErrInvalidPrefix is returned when an ID prefix contains non-hex characters.
var ErrInvalidPrefix = errors.New("invalid ID prefix: must contain only hexadecimal characters")

// ErrInvalidStatus is returned when an invalid status is provided.
var ErrInvalidStatus = errors.New("invalid status")

// AmbiguousPrefixError is returned when an ID prefix matches multiple
// workbenches. It includes the matches for better error messages.
type AmbiguousPrefixError struct {
	Prefix  string
	Matches []*Workbench
}

func (e *AmbiguousPrefixError) Error() string {
	return fmt.Sprintf("%s: '%s' matches %d workbenches", ErrAmbiguousPrefix.Error(), e.Prefix, len(e.Matches))
}

func (e *AmbiguousPrefixError) Unwrap() error {
	return ErrAmbiguousPrefix
}

// isHexString returns true if s contains only hexadecimal characters.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// CreateWorkbench inserts a new workbench into the database.
func (db *DB) CreateWorkbench(wb *Workbench) error {
	if !IsValidStatus(wb.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, wb.Status)
	}

	_, err := db.Exec(`
		INSERT INTO workbenches (
			id, repo_url, repo_path, branch_name, manifest,
			venv_path, image_tag, created_at, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		wb.ID,
		wb.RepoURL,
		wb.RepoPath,
		wb.BranchName,
		wb.Manifest,
		nullString(wb.VenvPath),
		nullString(wb.ImageTag),
		wb.CreatedAt.UTC().Format(time.RFC3339),
		string(wb.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create workbench: %w", err)
	}
	return nil
}

// GetWorkbench retrieves a workbench by full ID.
func (db *DB) GetWorkbench(id string) (*Workbench, error) {
	row := db.QueryRow(`
		SELECT id, repo_url, repo_path, branch_name, manifest,
		       venv_path, image_tag, created_at, status
		FROM workbenches WHERE id = ?`, id)

	wb, err := scanWorkbench(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkbenchNotFound
		}
		return nil, fmt.Errorf("failed to get workbench: %w", err)
	}
	return wb, nil
}

// GetWorkbenchByPrefix retrieves a workbench by ID prefix.
// Returns ErrWorkbenchNotFound if no match, an AmbiguousPrefixError if
// multiple match, or ErrInvalidPrefix for non-hex prefixes.
func (db *DB) GetWorkbenchByPrefix(prefix string) (*Workbench, error) {
	if prefix == "" || !isHexString(prefix) {
		return nil, ErrInvalidPrefix
	}

	rows, err := db.Query(`
		SELECT id, repo_url, repo_path, branch_name, manifest,
		       venv_path, image_tag, created_at, status
		FROM workbenches WHERE id LIKE ? || '%'`, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query workbenches: %w", err)
	}
	defer rows.Close()

	var matches []*Workbench
	for rows.Next() {
		wb, err := scanWorkbench(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workbench: %w", err)
		}
		matches = append(matches, wb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating workbenches: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, ErrWorkbenchNotFound
	case 1:
		return matches[0], nil
	default:
		return nil, &AmbiguousPrefixError{Prefix: prefix, Matches: matches}
	}
}

// UpdateWorkbench updates all mutable fields of a workbench.
func (db *DB) UpdateWorkbench(wb *Workbench) error {
	if !IsValidStatus(wb.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, wb.Status)
	}

	result, err := db.Exec(`
		UPDATE workbenches
		SET repo_url = ?, repo_path = ?, branch_name = ?, manifest = ?,
		    venv_path = ?, image_tag = ?, status = ?
		WHERE id = ?`,
		wb.RepoURL,
		wb.RepoPath,
		wb.BranchName,
		wb.Manifest,
		nullString(wb.VenvPath),
		nullString(wb.ImageTag),
		string(wb.Status),
		wb.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workbench: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrWorkbenchNotFound
	}
	return nil
}

// DeleteWorkbench removes a workbench record from the database.
func (db *DB) DeleteWorkbench(id string) error {
	result, err := db.Exec("DELETE FROM workbenches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete workbench: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrWorkbenchNotFound
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanWorkbench scans a workbench from a row.
func scanWorkbench(s scanner) (*Workbench, error) {
	var wb Workbench
	var venvPath, imageTag sql.NullString
	var createdAt, status string

	err := s.Scan(
		&wb.ID,
		&wb.RepoURL,
		&wb.RepoPath,
		&wb.BranchName,
		&wb.Manifest,
		&venvPath,
		&imageTag,
		&createdAt,
		&status,
	)
	if err != nil {
		return nil, err
	}

	wb.VenvPath = venvPath.String
	wb.ImageTag = imageTag.String
	wb.Status = Status(status)

	wb.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at timestamp %q: %w", createdAt, err)
	}

	return &wb, nil
}

// nullString converts an empty string to a NULL-able value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
