package utility

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tech-translator/db"
)

// Translation is one persisted tech_translator invocation.
type Translation struct {
	ID        int64     `json:"id"`
	Term      string    `json:"term"`
	Response  string    `json:"response"`
	Sections  int       `json:"sections"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreTranslation inserts a translation record. A nil DB is not an error:
// the server runs without persistence, as startup logs.
func StoreTranslation(term, response string, sectionCount int, source string, metadata map[string]interface{}) error {
	dbc := db.Get()
	if dbc == nil {
		return nil
	}
	// Marshal metadata to JSONB via string parameter
	var metaJSON string = "{}"
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("[DB] Failed to marshal metadata: %v", err)
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metaJSON = string(b)
	}
	if _, err := dbc.Exec(
		`INSERT INTO translations (term, response, sections, source, metadata) VALUES ($1,$2,$3,$4,$5::jsonb)`,
		term, response, sectionCount, source, metaJSON,
	); err != nil {
		log.Printf("[DB] insert translation failed: %v", err)
		return err
	}
	return nil
}

// RecentTranslations returns the most recent translation rows, newest first.
func RecentTranslations(limit int) ([]Translation, error) {
	dbc := db.Get()
	if dbc == nil {
		return nil, fmt.Errorf("db not initialized")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := dbc.Query(
		`SELECT id, term, response, sections, source, created_at FROM translations ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Translation
	for rows.Next() {
		var t Translation
		if err := rows.Scan(&t.ID, &t.Term, &t.Response, &t.Sections, &t.Source, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}
