package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

const createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_by INTEGER NOT NULL REFERENCES users (id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// Tag names are unique among live tags only, so a deleted name can be registered again.
const createTagsTable = `
CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_by INTEGER NOT NULL REFERENCES users (id),
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_active_name ON tags (name) WHERE is_deleted = 0;
CREATE INDEX IF NOT EXISTS idx_tags_is_deleted ON tags (is_deleted);
CREATE INDEX IF NOT EXISTS idx_tags_created_at ON tags (created_at);
`

const selectCategories = `
SELECT cat.id, cat.name, cat.created_at, cat.updated_at, u.id, u.email, u.name
FROM categories cat
JOIN users u ON u.id = cat.created_by`

const selectTags = `
SELECT t.id, t.name, t.is_deleted, t.created_at, t.updated_at, u.id, u.email, u.name
FROM tags t
JOIN users u ON u.id = t.created_by`

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (int64, error) {
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO categories (name, created_by, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		category.Name,
		category.CreatedBy.ID,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert category %s: %w", category.Name, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category last insert id: %w", err)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, selectCategories+`
WHERE cat.name = ?`, name)
	return scanCategory(row)
}

func (r *CategoryRepository) ListByNames(ctx context.Context, names []string) ([]domain.Category, error) {
	if len(names) == 0 {
		return []domain.Category{}, nil
	}
	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = name
	}

	query := fmt.Sprintf(selectCategories+`
WHERE cat.name IN (%s)
ORDER BY cat.name ASC`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories by name: %w", err)
	}
	return collectCategories(rows)
}

func (r *CategoryRepository) List(ctx context.Context, filter repository.Filter) ([]domain.Category, error) {
	var w where
	w.contains("cat.name", filter.Contains)

	query := selectCategories + "\n" + w.String() + "\nORDER BY cat.name ASC" + limitClause(filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	return collectCategories(rows)
}

func (r *CategoryRepository) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`, name, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename category %s: %w", name, repository.ErrDuplicate)
		}
		return fmt.Errorf("rename category: %w", err)
	}
	return expectAffected(res, "rename category")
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return expectAffected(res, "delete category")
}

func collectCategories(rows *sql.Rows) ([]domain.Category, error) {
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func scanCategory(row scanner) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.CreatedAt,
		&category.UpdatedAt,
		&category.CreatedBy.ID,
		&category.CreatedBy.Email,
		&category.CreatedBy.Name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &category, nil
}

type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

var _ repository.TagRepository = (*TagRepository)(nil)

func (r *TagRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTagsTable); err != nil {
		return fmt.Errorf("create tags table: %w", err)
	}
	return nil
}

func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) (int64, error) {
	now := time.Now().UTC()
	tag.CreatedAt = now
	tag.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO tags (name, created_by, is_deleted, created_at, updated_at) VALUES (?, ?, 0, ?, ?)`,
		tag.Name,
		tag.CreatedBy.ID,
		tag.CreatedAt,
		tag.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert tag %s: %w", tag.Name, repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("tag last insert id: %w", err)
	}
	tag.ID = id
	return id, nil
}

func (r *TagRepository) GetByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := r.db.QueryRowContext(ctx, selectTags+`
WHERE t.name = ? AND `+tagActive, name)
	return scanTag(row)
}

func (r *TagRepository) List(ctx context.Context, filter repository.Filter) ([]domain.Tag, error) {
	var w where
	w.add(tagActive)
	w.contains("t.name", filter.Contains)

	query := selectTags + "\n" + w.String() + "\nORDER BY t.name ASC" + limitClause(filter.Limit, filter.Offset)
	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, rows.Err()
}

func (r *TagRepository) Rename(ctx context.Context, id int64, name string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE tags SET name = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`, name, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename tag %s: %w", name, repository.ErrDuplicate)
		}
		return fmt.Errorf("rename tag: %w", err)
	}
	return expectAffected(res, "rename tag")
}

func (r *TagRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE tags SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return expectAffected(res, "delete tag")
}

func scanTag(row scanner) (*domain.Tag, error) {
	var tag domain.Tag
	if err := row.Scan(
		&tag.ID,
		&tag.Name,
		&tag.IsDeleted,
		&tag.CreatedAt,
		&tag.UpdatedAt,
		&tag.CreatedBy.ID,
		&tag.CreatedBy.Email,
		&tag.CreatedBy.Name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &tag, nil
}
