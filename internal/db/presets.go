package db

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/preset"
)

// Record is a stored preset.
type Record struct {
	ID string `json:"id"`
	preset.Preset
	PointCount int64     `json:"point_count"`
	Tier       ifs.Tier  `json:"tier"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Tags       []string  `json:"tags,omitempty"`
}

type CreatePresetInput struct {
	Preset preset.Preset
	Tags   []string
}

// UpdatePresetInput carries optional changes; nil fields are left alone.
type UpdatePresetInput struct {
	Description *string
	Transforms  []preset.Transform
	Iterations  *int
	Seed        *int
	OutputMode  *int
}

type ListOptions struct {
	Tag   string
	Limit int
}

// Stats summarises the stored presets.
type Stats struct {
	TotalPresets int     `json:"total_presets"`
	UniqueTags   int     `json:"unique_tags"`
	MaxPoints    int64   `json:"max_point_count"`
	Tiers        []Count `json:"tiers"`
}

type Count struct {
	Tier    string `json:"tier"`
	Presets int    `json:"presets"`
}

func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// pointCountOf validates p and returns the estimate to store with it.
func pointCountOf(p *preset.Preset) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return int64(ifs.MustPointCount(len(p.Transforms), p.Iterations)), nil
}

func (d *base) CreatePreset(input CreatePresetInput) (*Record, error) {
	p := input.Preset
	p.Name = strings.TrimSpace(p.Name)
	points, err := pointCountOf(&p)
	if err != nil {
		return nil, err
	}

	transforms, err := json.Marshal(p.Transforms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transforms: %w", err)
	}

	id := NewID()
	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)

	tx, err := d.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(d.bind(`INSERT INTO presets (id, name, description, transform_count, iterations, seed, output_mode, point_count, transforms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		id, p.Name, p.Description, len(p.Transforms), p.Iterations, p.Seed, p.OutputMode, points, string(transforms), nowStr, nowStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset %q: %w", p.Name, err)
	}

	for _, tag := range input.Tags {
		_, err = tx.Exec(d.bind(`INSERT INTO tags (preset_id, tag, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`),
			id, tag, nowStr)
		if err != nil {
			return nil, fmt.Errorf("failed to add tag %s: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	return d.GetPreset(id)
}

const presetColumns = `id, name, description, iterations, seed, output_mode, point_count, transforms, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func (d *base) scanRecord(row scanner) (*Record, error) {
	r := &Record{}
	var transforms, createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Iterations, &r.Seed, &r.OutputMode,
		&r.PointCount, &transforms, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(transforms), &r.Transforms); err != nil {
		return nil, fmt.Errorf("corrupt transforms for preset %s: %w", r.ID, err)
	}
	r.Tier = ifs.ClassifyPointCount(big.NewInt(r.PointCount))
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

func (d *base) GetPreset(id string) (*Record, error) {
	r, err := d.scanRecord(d.QueryRow(`SELECT `+presetColumns+` FROM presets WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}

	tags, err := d.GetTags(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	r.Tags = tags
	return r, nil
}

func (d *base) GetPresetByName(name string) (*Record, error) {
	var id string
	err := d.QueryRow(`SELECT id FROM presets WHERE name = ?`, strings.TrimSpace(name)).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find preset: %w", err)
	}
	return d.GetPreset(id)
}

// ResolveID resolves a preset ID prefix or exact name to a full ID.
// A full ULID (26 chars) is looked up directly. Returns ErrNotFound if
// nothing matches, or an error if a prefix matches more than one preset.
func (d *base) ResolveID(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) == 0 {
		return "", fmt.Errorf("empty ID prefix")
	}
	if len(prefix) == 26 {
		var id string
		err := d.QueryRow("SELECT id FROM presets WHERE id = ?", prefix).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to resolve ID: %w", err)
		}
	}

	if r, err := d.GetPresetByName(prefix); err == nil {
		return r.ID, nil
	}

	rows, err := d.query("SELECT id FROM presets WHERE id LIKE ? LIMIT 2", strings.ToUpper(prefix)+"%")
	if err != nil {
		return "", fmt.Errorf("failed to resolve ID prefix: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan ID: %w", err)
		}
		matches = append(matches, id)
	}

	switch len(matches) {
	case 0:
		return "", ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous ID prefix %q: matches %s and %s", prefix, matches[0], matches[1])
	}
}

func (d *base) UpdatePreset(id string, input UpdatePresetInput) (*Record, error) {
	existing, err := d.GetPreset(id)
	if err != nil {
		return nil, err
	}

	p := existing.Preset
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Transforms != nil {
		p.Transforms = input.Transforms
	}
	if input.Iterations != nil {
		p.Iterations = *input.Iterations
	}
	if input.Seed != nil {
		p.Seed = *input.Seed
	}
	if input.OutputMode != nil {
		p.OutputMode = *input.OutputMode
	}

	points, err := pointCountOf(&p)
	if err != nil {
		return nil, err
	}
	transforms, err := json.Marshal(p.Transforms)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transforms: %w", err)
	}

	_, err = d.exec(`UPDATE presets SET description=?, transform_count=?, iterations=?, seed=?, output_mode=?, point_count=?, transforms=?, updated_at=?
		WHERE id=?`, p.Description, len(p.Transforms), p.Iterations, p.Seed, p.OutputMode, points, string(transforms),
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update preset: %w", err)
	}

	return d.GetPreset(id)
}

func (d *base) DeletePreset(id string) error {
	result, err := d.exec("DELETE FROM presets WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *base) ListPresets(opts ListOptions) ([]*Record, error) {
	q := `SELECT p.id, p.name, p.description, p.iterations, p.seed, p.output_mode, p.point_count, p.transforms, p.created_at, p.updated_at
		FROM presets p`
	var args []interface{}

	if opts.Tag != "" {
		q += " JOIN tags t ON p.id = t.preset_id WHERE t.tag = ?"
		args = append(args, opts.Tag)
	}
	q += " ORDER BY p.name"

	if opts.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := d.query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r, err := d.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	rows.Close()

	for _, r := range records {
		tags, _ := d.GetTags(r.ID)
		r.Tags = tags
	}
	return records, nil
}

func (d *base) Stats() (*Stats, error) {
	s := &Stats{}
	if err := d.QueryRow("SELECT COUNT(*), COALESCE(MAX(point_count), 0) FROM presets").Scan(&s.TotalPresets, &s.MaxPoints); err != nil {
		return nil, fmt.Errorf("failed to count presets: %w", err)
	}
	if err := d.QueryRow("SELECT COUNT(DISTINCT tag) FROM tags").Scan(&s.UniqueTags); err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}

	rows, err := d.query("SELECT point_count FROM presets")
	if err != nil {
		return nil, fmt.Errorf("failed to read point counts: %w", err)
	}
	defer rows.Close()

	byTier := map[ifs.Tier]int{}
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan point count: %w", err)
		}
		byTier[ifs.ClassifyPointCount(big.NewInt(n))]++
	}
	for _, tier := range []ifs.Tier{ifs.TierLight, ifs.TierModerate, ifs.TierHeavy, ifs.TierExtreme} {
		if byTier[tier] > 0 {
			s.Tiers = append(s.Tiers, Count{Tier: string(tier), Presets: byTier[tier]})
		}
	}
	return s, rows.Err()
}
