package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aboard/internal/domain"
	"aboard/internal/repository"
)

const createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	likes_cnt INTEGER NOT NULL DEFAULT 0,
	created_by INTEGER NOT NULL REFERENCES users (id),
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_is_deleted ON posts (is_deleted);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at);

CREATE TABLE IF NOT EXISTS post_likes (
	post_id INTEGER NOT NULL REFERENCES posts (id),
	user_id INTEGER NOT NULL REFERENCES users (id),
	created_at DATETIME NOT NULL,
	PRIMARY KEY (post_id, user_id)
);

CREATE TABLE IF NOT EXISTS post_categories (
	post_id INTEGER NOT NULL REFERENCES posts (id),
	category_id INTEGER NOT NULL,
	PRIMARY KEY (post_id, category_id)
);
CREATE INDEX IF NOT EXISTS idx_post_categories_category ON post_categories (category_id);
`

// the first placeholder is always the viewer id used to compute "liked"
const selectPosts = `
SELECT p.id, p.title, p.content, p.likes_cnt,
	EXISTS (SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = ?),
	p.is_deleted, p.created_at, p.updated_at, u.id, u.email, u.name
FROM posts p
JOIN users u ON u.id = p.created_by`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

var _ repository.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	return nil
}

// Create inserts the post and links the named categories in one transaction.
func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO posts (title, content, likes_cnt, created_by, is_deleted, created_at, updated_at)
VALUES (?, ?, 0, ?, 0, ?, ?)`,
		post.Title,
		post.Content,
		post.CreatedBy.ID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}

	if err := linkCategories(ctx, tx, id, post.Categories); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit post insert: %w", err)
	}

	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64, viewerID int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPosts+`
WHERE p.id = ? AND `+postActive,
		viewerID,
		id,
	)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	posts := []domain.Post{*post}
	if err := r.loadCategories(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostRepository) List(ctx context.Context, filter repository.Filter, viewerID int64) ([]domain.Post, error) {
	var w where
	w.add(postActive)
	w.contains("p.title", filter.Contains)
	if filter.Category != "" {
		w.add(`EXISTS (SELECT 1 FROM post_categories pc JOIN categories cat ON cat.id = pc.category_id WHERE pc.post_id = p.id AND cat.name = ?)`, filter.Category)
	}

	query := selectPosts + "\n" + w.String() + "\nORDER BY p.created_at DESC, p.id DESC" + limitClause(filter.Limit, filter.Offset)
	args := append([]any{viewerID}, w.args...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	rows.Close()

	if err := r.loadCategories(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Update replaces title, content and the category set of an active post.
func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE posts SET title = ?, content = ?, updated_at = ?
WHERE id = ? AND is_deleted = 0`,
		post.Title,
		post.Content,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := expectAffected(res, "update post"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ?`, post.ID); err != nil {
		return fmt.Errorf("clear post categories: %w", err)
	}
	if err := linkCategories(ctx, tx, post.ID, post.Categories); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit post update: %w", err)
	}
	return nil
}

func (r *PostRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE posts SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return expectAffected(res, "delete post")
}

func (r *PostRepository) AddLike(ctx context.Context, id, userID int64) error {
	return addLike(ctx, r.db, likeTarget{table: "posts", likes: "post_likes", column: "post_id"}, id, userID)
}

func (r *PostRepository) RemoveLike(ctx context.Context, id, userID int64) error {
	return removeLike(ctx, r.db, likeTarget{table: "posts", likes: "post_likes", column: "post_id"}, id, userID)
}

// ListIDsByCategory includes deleted posts: a removed category must not linger anywhere.
func (r *PostRepository) ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT post_id FROM post_categories WHERE category_id = ? ORDER BY post_id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query posts by category: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DetachCategory is atomic for a single post only.
func (r *PostRepository) DetachCategory(ctx context.Context, id, categoryID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM post_categories WHERE post_id = ? AND category_id = ?`, id, categoryID)
	if err != nil {
		return fmt.Errorf("detach category: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE posts SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("touch post: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit detach category: %w", err)
	}
	return nil
}

// loadCategories resolves names through the categories table; dangling references drop out of the join.
func (r *PostRepository) loadCategories(ctx context.Context, posts []domain.Post) error {
	for i := range posts {
		rows, err := r.db.QueryContext(ctx, `
SELECT cat.name
FROM post_categories pc
JOIN categories cat ON cat.id = pc.category_id
WHERE pc.post_id = ?
ORDER BY cat.name ASC`, posts[i].ID)
		if err != nil {
			return fmt.Errorf("query post categories: %w", err)
		}
		names := []string{}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return fmt.Errorf("scan post category: %w", err)
			}
			names = append(names, name)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return fmt.Errorf("iterate post categories: %w", err)
		}
		posts[i].Categories = names
	}
	return nil
}

func linkCategories(ctx context.Context, tx *sql.Tx, postID int64, names []string) error {
	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO post_categories (post_id, category_id)
SELECT ?, id FROM categories WHERE name = ?`, postID, name); err != nil {
			return fmt.Errorf("link category %s: %w", name, err)
		}
	}
	return nil
}

func scanPost(row scanner) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.LikesCnt,
		&post.Liked,
		&post.IsDeleted,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.CreatedBy.ID,
		&post.CreatedBy.Email,
		&post.CreatedBy.Name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
