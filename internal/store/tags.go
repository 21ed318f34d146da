package store

import (
	"context"

	"github.com/pennywise-app/pennywise/internal/domain"
)

// GetOrCreateTag returns the tag with the given name, creating it first if
// it does not exist.
func (s *Store) GetOrCreateTag(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tags (name) VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id, name`, name).
		Scan(&tag.ID, &tag.Name)
	if err != nil {
		return nil, storageErr("get or create tag", err)
	}
	return &tag, nil
}

// ListTags returns every tag ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, storageErr("list tags", err)
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, storageErr("list tags", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list tags", err)
	}
	return out, nil
}

// CreateRule persists a tagging rule. Saving the same pattern/tag pair
// twice is a no-op.
func (s *Store) CreateRule(ctx context.Context, rule *domain.Rule) error {
	if _, err := domain.NewRule(rule.Pattern, rule.TagID); err != nil {
		return storageErr("create rule", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (pattern, tag_id) VALUES (?, ?)
		ON CONFLICT (pattern, tag_id) DO NOTHING`,
		rule.Pattern, rule.TagID)
	if err != nil {
		return storageErr("create rule", err)
	}
	return nil
}

// ListRules returns every tagging rule ordered by id.
func (s *Store) ListRules(ctx context.Context) ([]domain.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pattern, tag_id FROM rules ORDER BY id`)
	if err != nil {
		return nil, storageErr("list rules", err)
	}
	defer rows.Close()

	var out []domain.Rule
	for rows.Next() {
		var r domain.Rule
		if err := rows.Scan(&r.ID, &r.Pattern, &r.TagID); err != nil {
			return nil, storageErr("list rules", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list rules", err)
	}
	return out, nil
}
