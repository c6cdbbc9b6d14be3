package store

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a schema migration step.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports the current and available migration versions.
type MigrationStatus struct {
	CurrentVersion   int             `json:"current_version"`
	AvailableVersion int             `json:"available_version"`
	Pending          []MigrationInfo `json:"pending"`
}

// MigrationInfo describes a single migration.
type MigrationInfo struct {
	Version     int    `json:"version"`
	Description string `json:"description"`
}

// migrations is the ordered list of all schema migrations.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema: complaints, ipso sub-rows, replies, problematic articles",
		SQL: `
CREATE TABLE IF NOT EXISTS complaints (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL DEFAULT 'BBC',
  origin_url TEXT,
  title TEXT,
  description TEXT,
  emailaddress TEXT,
  firstname TEXT,
  lastname TEXT,
  salutation TEXT,
  generalissue1 TEXT,
  intro_text TEXT,
  iswelsh TEXT,
  liveorondemand TEXT,
  localradio TEXT,
  make TEXT,
  moderation_text TEXT,
  network TEXT,
  outside_the_uk TEXT,
  platform TEXT,
  programme TEXT,
  programmeid TEXT,
  reception_text TEXT,
  redbuttonfault TEXT,
  region TEXT,
  responserequired TEXT,
  servicetv TEXT,
  sounds_text TEXT,
  sourceurl TEXT,
  subject TEXT,
  transmissiondate TEXT,
  transmissiontime TEXT,
  under18 TEXT,
  verifyform TEXT,
  complaint_nature TEXT,
  complaint_nature_sounds TEXT,
  ipso_terms INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ipso_fields (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  complaint_id TEXT NOT NULL,
  field_order INTEGER NOT NULL,
  field_value TEXT,
  FOREIGN KEY (complaint_id) REFERENCES complaints(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS ipso_breaches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  complaint_id TEXT NOT NULL,
  clause TEXT,
  details TEXT,
  FOREIGN KEY (complaint_id) REFERENCES complaints(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS replies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  bbc_ref_number TEXT,
  intercept_id TEXT NOT NULL,
  bbc_reply TEXT,
  created_at TEXT NOT NULL,
  FOREIGN KEY (intercept_id) REFERENCES complaints(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS problematic_articles (
  url TEXT PRIMARY KEY,
  title TEXT,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ipso_fields_complaint ON ipso_fields(complaint_id, field_order);
CREATE INDEX IF NOT EXISTS idx_ipso_breaches_complaint ON ipso_breaches(complaint_id);
CREATE INDEX IF NOT EXISTS idx_replies_intercept ON replies(intercept_id, created_at);
`,
	},
	{
		Version:     2,
		Description: "access token ledger and file upload metadata",
		SQL: `
CREATE TABLE IF NOT EXISTS access_tokens (
  token_hash TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS uploads (
  id TEXT PRIMARY KEY,
  complaint_id TEXT NOT NULL,
  filename TEXT NOT NULL,
  media_type TEXT,
  size_bytes INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  FOREIGN KEY (complaint_id) REFERENCES complaints(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_access_tokens_created ON access_tokens(created_at);
CREATE INDEX IF NOT EXISTS idx_uploads_complaint ON uploads(complaint_id, created_at);
`,
	},
	{
		Version:     3,
		Description: "problematic article listing index",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_problematic_created_desc ON problematic_articles(created_at DESC);
`,
	},
}

const migrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at TEXT NOT NULL
);
`

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist.
func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(migrationsTableSQL)
	return err
}

// currentVersion returns the highest applied migration version, or 0 if none.
func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigrations applies all pending migrations in order.
func runMigrations(db *sql.DB) error {
	if err := ensureMigrationsTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, m := range sorted {
		if m.Version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))", m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// MigrationPlan returns the current migration status without applying anything.
func MigrationPlan(db *sql.DB) (*MigrationStatus, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return nil, err
	}

	current, err := currentVersion(db)
	if err != nil {
		return nil, err
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	available := 0
	if len(sorted) > 0 {
		available = sorted[len(sorted)-1].Version
	}

	var pending []MigrationInfo
	for _, m := range sorted {
		if m.Version > current {
			pending = append(pending, MigrationInfo{Version: m.Version, Description: m.Description})
		}
	}

	return &MigrationStatus{
		CurrentVersion:   current,
		AvailableVersion: available,
		Pending:          pending,
	}, nil
}
