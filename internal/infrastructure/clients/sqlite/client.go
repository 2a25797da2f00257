package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/medroute/navigator/pkg/config"
)

// Client wraps the embedded database used for appointments and triage
// assessments.
type Client struct {
	db *sql.DB
}

// NewClient opens the database and applies the schema.
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &Client{db: db}
	if err := c.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return c, nil
}

func (c *Client) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			patient_name TEXT NOT NULL,
			patient_id TEXT,
			phone TEXT NOT NULL,
			department TEXT NOT NULL,
			department_name TEXT,
			doctor TEXT NOT NULL,
			doctor_id TEXT,
			date_time DATETIME NOT NULL,
			duration_minutes INTEGER NOT NULL,
			condition TEXT NOT NULL,
			status TEXT NOT NULL,
			priority TEXT,
			notes TEXT,
			insurance_provider TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS triage_assessments (
			patient_id TEXT PRIMARY KEY,
			urgency_level TEXT NOT NULL,
			priority_score INTEGER NOT NULL,
			department TEXT NOT NULL,
			result_json BLOB NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_department ON appointments(department);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor_id ON appointments(doctor_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_date_time ON appointments(date_time);
		CREATE INDEX IF NOT EXISTS idx_triage_urgency ON triage_assessments(urgency_level);
	`

	_, err := c.db.Exec(schema)
	return err
}

// DB returns the underlying database handle
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database
func (c *Client) Close() error {
	return c.db.Close()
}
