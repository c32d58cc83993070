package jobstorage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"github.com/cockroachdb/errors"
	"github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/shared/lib/errors/mark"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

var _ jobentity.Store = &SQLiteDB{}

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open the sqlite DB")
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Wrapf(err, "Failed to set pragma %s", pragma)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "Failed to apply the DB schema")
	}

	if err := stampSchemaVersion(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteDB{db: db}, nil
}

func stampSchemaVersion(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return errors.Wrap(err, "Failed to read the schema version")
	}

	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return errors.Wrap(err, "Failed to stamp the schema version")
		}
	}

	return nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type jobRow struct {
	id               string
	originalFilename string
	uploadPath       string
	status           string
	stemPaths        string
	errorMessage     string
	errorDebugLog    string
	createdAt        string
	updatedAt        string
}

func newJobRow(job jobentity.Job) (jobRow, error) {
	stemPaths := job.StemPaths
	if stemPaths == nil {
		stemPaths = map[string]string{}
	}

	stemPathsJSON, err := json.Marshal(stemPaths)
	if err != nil {
		return jobRow{}, mark.Wrap(err, DefaultErrorMark, "Failed to marshal the job's stem paths")
	}

	return jobRow{
		id:               job.ID,
		originalFilename: job.OriginalFilename,
		uploadPath:       job.UploadPath,
		status:           string(job.Status),
		stemPaths:        string(stemPathsJSON),
		errorMessage:     job.ErrorMessage,
		errorDebugLog:    job.ErrorDebugLog,
		createdAt:        job.CreatedAt.UTC().Format(time.RFC3339Nano),
		updatedAt:        job.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func (j jobRow) toEntity() (jobentity.Job, error) {
	stemPaths := map[string]string{}
	if err := json.Unmarshal([]byte(j.stemPaths), &stemPaths); err != nil {
		return jobentity.Job{}, mark.Wrap(err, UnmarshalMark, "Failed to unmarshal the job's stem paths")
	}

	if len(stemPaths) == 0 {
		stemPaths = nil
	}

	createdAt, err := time.Parse(time.RFC3339Nano, j.createdAt)
	if err != nil {
		return jobentity.Job{}, mark.Wrap(err, UnmarshalMark, "Failed to parse the job's creation time")
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, j.updatedAt)
	if err != nil {
		return jobentity.Job{}, mark.Wrap(err, UnmarshalMark, "Failed to parse the job's update time")
	}

	return jobentity.Job{
		ID:               j.id,
		OriginalFilename: j.originalFilename,
		UploadPath:       j.uploadPath,
		Status:           jobentity.Status(j.status),
		StemPaths:        stemPaths,
		ErrorMessage:     j.errorMessage,
		ErrorDebugLog:    j.errorDebugLog,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}, nil
}

func (s *SQLiteDB) CreateJob(ctx context.Context, job jobentity.Job) error {
	if job.ID == "" {
		return mark.Message(DefaultErrorMark, "Job ID is not defined on job")
	}

	row, err := newJobRow(job)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to start a DB transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM separation_jobs WHERE id = ?", row.id).
		Scan(&exists)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to look up the job")
	}

	if exists > 0 {
		return mark.Message(JobAlreadyExists, "A job with this ID already exists")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO separation_jobs
		(id, original_filename, upload_path, status, stem_paths, error_message, error_debug_log, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.id, row.originalFilename, row.uploadPath, row.status,
		row.stemPaths, row.errorMessage, row.errorDebugLog,
		row.createdAt, row.updatedAt)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to insert the job in the DB")
	}

	if err := tx.Commit(); err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to commit the job insert")
	}

	return nil
}

func (s *SQLiteDB) GetJob(ctx context.Context, id string) (jobentity.Job, error) {
	row, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT id, original_filename, upload_path, status, stem_paths, error_message, error_debug_log, created_at, updated_at
		FROM separation_jobs WHERE id = ?`, id))

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return jobentity.Job{}, mark.Wrap(err, JobNotFound, "Job is not found")
		default:
			return jobentity.Job{}, mark.Wrap(err, DefaultErrorMark, "Failed to fetch job")
		}
	}

	return row.toEntity()
}

func (s *SQLiteDB) UpdateJob(ctx context.Context, id string, updater jobentity.JobUpdater) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to start a DB transaction")
	}
	defer func() { _ = tx.Rollback() }()

	row, err := scanJob(tx.QueryRowContext(ctx,
		`SELECT id, original_filename, upload_path, status, stem_paths, error_message, error_debug_log, created_at, updated_at
		FROM separation_jobs WHERE id = ?`, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return mark.Wrap(err, JobNotFound, "Can't find the job to update")
		default:
			return mark.Wrap(err, DefaultErrorMark, "Failed to fetch the job to update")
		}
	}

	job, err := row.toEntity()
	if err != nil {
		return err
	}

	updatedJob, err := updater(job)
	if err != nil {
		return errors.Wrap(err, "The updater failed to make changes to the job")
	}

	updatedRow, err := newJobRow(updatedJob)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE separation_jobs
		SET original_filename = ?, upload_path = ?, status = ?, stem_paths = ?, error_message = ?, error_debug_log = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		updatedRow.originalFilename, updatedRow.uploadPath, updatedRow.status,
		updatedRow.stemPaths, updatedRow.errorMessage, updatedRow.errorDebugLog,
		updatedRow.updatedAt, id, row.status)
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Unable to set the job")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to read the update result")
	}

	if affected == 0 {
		return mark.Message(UpdateConflict, "The job changed while it was being updated")
	}

	if err := tx.Commit(); err != nil {
		return mark.Wrap(err, DefaultErrorMark, "Failed to commit the job update")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (jobRow, error) {
	row := jobRow{}
	err := scanner.Scan(
		&row.id, &row.originalFilename, &row.uploadPath, &row.status,
		&row.stemPaths, &row.errorMessage, &row.errorDebugLog,
		&row.createdAt, &row.updatedAt)
	if err != nil {
		return jobRow{}, err
	}

	return row, nil
}
