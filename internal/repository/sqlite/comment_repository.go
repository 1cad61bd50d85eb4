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

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL REFERENCES posts (id),
	parent_id INTEGER NULL REFERENCES comments (id),
	content TEXT NOT NULL,
	likes_cnt INTEGER NOT NULL DEFAULT 0,
	created_by INTEGER NOT NULL REFERENCES users (id),
	is_deleted INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_post ON comments (post_id);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments (parent_id);
CREATE INDEX IF NOT EXISTS idx_comments_is_deleted ON comments (is_deleted);
CREATE INDEX IF NOT EXISTS idx_comments_created_at ON comments (created_at);

CREATE TABLE IF NOT EXISTS comment_likes (
	comment_id INTEGER NOT NULL REFERENCES comments (id),
	user_id INTEGER NOT NULL REFERENCES users (id),
	created_at DATETIME NOT NULL,
	PRIMARY KEY (comment_id, user_id)
);
`

const selectComments = `
SELECT c.id, c.post_id, c.parent_id, c.content, c.likes_cnt,
	EXISTS (SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = ?),
	c.is_deleted, c.created_at, c.updated_at, u.id, u.email, u.name
FROM comments c
JOIN users u ON u.id = c.created_by`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

var _ repository.CommentRepository = (*CommentRepository)(nil)

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	var parentID any
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (post_id, parent_id, content, likes_cnt, created_by, is_deleted, created_at, updated_at)
VALUES (?, ?, ?, 0, ?, 0, ?, ?)`,
		comment.PostID,
		parentID,
		comment.Content,
		comment.CreatedBy.ID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64, viewerID int64) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, selectComments+`
WHERE c.id = ? AND `+commentActive,
		viewerID,
		id,
	)
	return scanComment(row)
}

// ListByPost returns top-level comments only; replies hang off their parent.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int64, filter repository.Filter, viewerID int64) ([]domain.Comment, error) {
	var w where
	w.add(commentActive)
	w.add("c.post_id = ?", postID)
	w.add("c.parent_id IS NULL")
	return r.list(ctx, w, filter, viewerID)
}

func (r *CommentRepository) ListReplies(ctx context.Context, parentID int64, filter repository.Filter, viewerID int64) ([]domain.Comment, error) {
	var w where
	w.add(commentActive)
	w.add("c.parent_id = ?", parentID)
	return r.list(ctx, w, filter, viewerID)
}

func (r *CommentRepository) list(ctx context.Context, w where, filter repository.Filter, viewerID int64) ([]domain.Comment, error) {
	w.contains("c.content", filter.Contains)

	query := selectComments + "\n" + w.String() + "\nORDER BY c.created_at ASC, c.id ASC" + limitClause(filter.Limit, filter.Offset)
	args := append([]any{viewerID}, w.args...)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE comments SET content = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		content,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return expectAffected(res, "update comment")
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE comments SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(res, "delete comment")
}

func (r *CommentRepository) AddLike(ctx context.Context, id, userID int64) error {
	return addLike(ctx, r.db, likeTarget{table: "comments", likes: "comment_likes", column: "comment_id"}, id, userID)
}

func (r *CommentRepository) RemoveLike(ctx context.Context, id, userID int64) error {
	return removeLike(ctx, r.db, likeTarget{table: "comments", likes: "comment_likes", column: "comment_id"}, id, userID)
}

func scanComment(row scanner) (*domain.Comment, error) {
	var (
		comment  domain.Comment
		parentID sql.NullInt64
	)
	if err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&parentID,
		&comment.Content,
		&comment.LikesCnt,
		&comment.Liked,
		&comment.IsDeleted,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.CreatedBy.ID,
		&comment.CreatedBy.Email,
		&comment.CreatedBy.Name,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	if parentID.Valid {
		id := parentID.Int64
		comment.ParentID = &id
	}
	return &comment, nil
}
