// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package project tracks uploaded documents and the outcome of their
// pipeline runs in a SQLite database.
package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/manhwa-translate/pkg/types"
)

const dbFile = "projects.db"

// timeLayout has fixed-width fractional seconds so stored timestamps sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrNotFound is returned when no project has the requested ID.
	ErrNotFound = errors.New("project not found")

	// ErrInvalidTransition is returned when a status change is not allowed
	// from the project's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// transitions lists the statuses each status may move to. Finished projects
// may be run again.
var transitions = map[types.ProjectStatus][]types.ProjectStatus{
	types.StatusPending:    {types.StatusProcessing},
	types.StatusProcessing: {types.StatusCompleted, types.StatusFailed},
	types.StatusCompleted:  {types.StatusProcessing},
	types.StatusFailed:     {types.StatusProcessing},
}

func canTransition(from, to types.ProjectStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// Store manages the project database.
type Store struct {
	db         *sql.DB
	dir        string
	uploadsDir string
}

// Open opens or creates the database at ProjectsDir/projects.db and creates
// the schema if it does not exist.
func Open(cfg types.ProjectConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.ProjectsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating projects directory: %w", err)
	}

	dbPath := filepath.Join(cfg.ProjectsDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.ProjectsDir, uploadsDir: cfg.UploadsDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			pdf_path TEXT NOT NULL,
			translated_pdf_path TEXT,
			error TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
		`CREATE TABLE IF NOT EXISTS pages (
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			page_id TEXT NOT NULL,
			image TEXT,
			ocr TEXT,
			translation TEXT,
			overlay TEXT,
			regions INTEGER,
			translated INTEGER,
			failed INTEGER,
			PRIMARY KEY (project_id, seq)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Create copies the PDF at srcPath into the uploads directory and records a
// pending project for it.
func (s *Store) Create(ctx context.Context, title, srcPath string) (*types.Project, error) {
	pdfPath, err := CopyUpload(srcPath, s.uploadsDir)
	if err != nil {
		return nil, err
	}

	ts := now()
	p := &types.Project{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    types.StatusPending,
		PDFPath:   pdfPath,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, title, status, pdf_path, translated_pdf_path, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', '', ?, ?)`,
		p.ID, p.Title, string(p.Status), p.PDFPath, formatTime(ts), formatTime(ts),
	)
	if err != nil {
		os.Remove(pdfPath)
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return p, nil
}

// Get returns the project with its pages, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, status, pdf_path, translated_pdf_path, error, created_at, updated_at
		 FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", id, err)
	}

	pages, err := s.pages(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Pages = pages
	return p, nil
}

// ListOptions filters List.
type ListOptions struct {
	// Status keeps only projects with this status when set.
	Status types.ProjectStatus
}

// List returns projects newest first. Pages are not loaded.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]types.Project, error) {
	query := `SELECT id, title, status, pdf_path, translated_pdf_path, error, created_at, updated_at
		FROM projects`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Start moves the project to processing and clears the outcome of any
// previous run.
func (s *Store) Start(ctx context.Context, id string) error {
	return s.transition(ctx, id, types.StatusProcessing, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE projects SET translated_pdf_path = '', error = '' WHERE id = ?`, id)
		return err
	})
}

// Complete marks the project completed with the translated PDF and the
// pages of the run.
func (s *Store) Complete(ctx context.Context, id, translatedPath string, pages []types.PageEntry) error {
	return s.transition(ctx, id, types.StatusCompleted, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET translated_pdf_path = ? WHERE id = ?`, translatedPath, id); err != nil {
			return err
		}
		return replacePages(ctx, tx, id, pages)
	})
}

// Fail marks the project failed and records runErr.
func (s *Store) Fail(ctx context.Context, id string, runErr error, pages []types.PageEntry) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	return s.transition(ctx, id, types.StatusFailed, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET error = ? WHERE id = ?`, msg, id); err != nil {
			return err
		}
		return replacePages(ctx, tx, id, pages)
	})
}

// transition checks and applies a status change together with extra updates
// in one transaction.
func (s *Store) transition(ctx context.Context, id string, to types.ProjectStatus, apply func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var from string
	err = tx.QueryRowContext(ctx, `SELECT status FROM projects WHERE id = ?`, id).Scan(&from)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading status of %s: %w", id, err)
	}

	if !canTransition(types.ProjectStatus(from), to) {
		return fmt.Errorf("%s: %s -> %s: %w", id, from, to, ErrInvalidTransition)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		string(to), formatTime(now()), id); err != nil {
		return fmt.Errorf("updating status: %w", err)
	}
	if err := apply(tx); err != nil {
		return fmt.Errorf("updating project %s: %w", id, err)
	}
	return tx.Commit()
}

func replacePages(ctx context.Context, tx *sql.Tx, id string, pages []types.PageEntry) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("deleting old pages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (project_id, seq, page_id, image, ocr, translation, overlay, regions, translated, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, pg := range pages {
		if _, err := stmt.ExecContext(ctx,
			id, i, pg.ID, pg.Image, pg.OCR, pg.Translation, pg.Overlay,
			pg.Regions, pg.Translated, pg.Failed,
		); err != nil {
			return fmt.Errorf("inserting page %s: %w", pg.ID, err)
		}
	}
	return nil
}

func (s *Store) pages(ctx context.Context, id string) ([]types.PageEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page_id, image, ocr, translation, overlay, regions, translated, failed
		 FROM pages WHERE project_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("reading pages of %s: %w", id, err)
	}
	defer rows.Close()

	var pages []types.PageEntry
	for rows.Next() {
		var pg types.PageEntry
		if err := rows.Scan(&pg.ID, &pg.Image, &pg.OCR, &pg.Translation, &pg.Overlay,
			&pg.Regions, &pg.Translated, &pg.Failed); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		pages = append(pages, pg)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*types.Project, error) {
	var (
		p                  types.Project
		status             string
		created, updated   string
		translated, errMsg sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.Title, &status, &p.PDFPath, &translated, &errMsg, &created, &updated); err != nil {
		return nil, err
	}
	p.Status = types.ProjectStatus(status)
	p.TranslatedPDFPath = translated.String
	p.Error = errMsg.String

	var err error
	if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
