package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RunMigrations applies all pending up migrations. Used at startup.
func RunMigrations(db *sql.DB, dir string) error {
	return MigrateUp(db, dir, 0)
}

// MigrateUp applies up to 'steps' pending migrations in lexical order.
// steps=0 means all pending. Each file runs inside its own transaction.
func MigrateUp(db *sql.DB, dir string, steps int) error {
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}
	ups, err := listUpFiles(dir)
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	count := 0
	for _, name := range ups {
		if applied[name] {
			continue
		}
		if err := applyInTx(db, filepath.Join(dir, name), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES($1)`, name)
			return err
		}); err != nil {
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		count++
		if steps > 0 && count >= steps {
			break
		}
	}
	return nil
}

// MigrateDown rolls back 'steps' applied migrations, newest first. Each
// applied "<base>.up.sql" version must have a matching "<base>.down.sql".
func MigrateDown(db *sql.DB, dir string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be > 0 for down")
	}
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}
	versions := sortedVersions(applied)
	for i := len(versions) - 1; i >= 0 && steps > 0; i-- {
		ver := versions[i]
		downName := downFileName(ver)
		downPath := filepath.Join(dir, downName)
		if _, statErr := os.Stat(downPath); statErr != nil {
			return fmt.Errorf("down migration not found for %s (expected %s)", ver, downName)
		}
		if err := applyInTx(db, downPath, func(tx *sql.Tx) error {
			_, err := tx.Exec(`DELETE FROM schema_migrations WHERE version=$1`, ver)
			return err
		}); err != nil {
			return fmt.Errorf("down migration %s failed: %w", downName, err)
		}
		steps--
	}
	return nil
}

// MigrateStatus returns applied and pending migration file names.
func MigrateStatus(db *sql.DB, dir string) (applied []string, pending []string, err error) {
	if err = ensureMigrationsTable(db); err != nil {
		return
	}
	ups, err2 := listUpFiles(dir)
	if err2 != nil {
		err = err2
		return
	}
	aset, err2 := appliedVersions(db)
	if err2 != nil {
		err = err2
		return
	}
	applied = sortedVersions(aset)
	for _, f := range ups {
		if !aset[f] {
			pending = append(pending, f)
		}
	}
	return
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY
	)`)
	return err
}

func appliedVersions(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	m := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		m[v] = true
	}
	return m, rows.Err()
}

func sortedVersions(set map[string]bool) []string {
	list := make([]string, 0, len(set))
	for v := range set {
		list = append(list, v)
	}
	sort.Strings(list)
	return list
}

func listUpFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".down.sql") {
			continue
		}
		if strings.HasSuffix(e.Name(), ".up.sql") || strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func downFileName(up string) string {
	if strings.HasSuffix(up, ".up.sql") {
		return strings.TrimSuffix(up, ".up.sql") + ".down.sql"
	}
	if strings.HasSuffix(up, ".sql") {
		return strings.TrimSuffix(up, ".sql") + ".down.sql"
	}
	return up + ".down.sql"
}

// applyInTx runs the SQL file and the bookkeeping statement in one transaction.
func applyInTx(db *sql.DB, path string, mark func(*sql.Tx) error) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if sqlText := strings.TrimSpace(string(content)); sqlText != "" {
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := mark(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
