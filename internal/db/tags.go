package db

import (
	"fmt"
	"time"
)

func (d *base) AddTag(presetID, tag string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := d.exec(`INSERT INTO tags (preset_id, tag, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		presetID, tag, now)
	if err != nil {
		return fmt.Errorf("failed to add tag: %w", err)
	}
	return nil
}

func (d *base) RemoveTag(presetID, tag string) error {
	_, err := d.exec("DELETE FROM tags WHERE preset_id = ? AND tag = ?", presetID, tag)
	if err != nil {
		return fmt.Errorf("failed to remove tag: %w", err)
	}
	return nil
}

func (d *base) GetTags(presetID string) ([]string, error) {
	return d.collectTags("SELECT tag FROM tags WHERE preset_id = ? ORDER BY tag", presetID)
}

func (d *base) ListAllTags() ([]string, error) {
	return d.collectTags("SELECT DISTINCT tag FROM tags ORDER BY tag")
}

func (d *base) collectTags(q string, args ...interface{}) ([]string, error) {
	rows, err := d.query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
