package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aboard/internal/repository"
)

// likeTarget names a liked table, its likes set table and the set's foreign key column.
type likeTarget struct {
	table  string
	likes  string
	column string
}

// addLike pushes the user into the likes set and bumps likes_cnt in one transaction,
// so likes_cnt always equals the size of the set.
func addLike(ctx context.Context, db *sql.DB, target likeTarget, id, userID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := requireActive(ctx, tx, target.table, id); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, user_id, created_at) VALUES (?, ?, ?)`, target.likes, target.column),
		id, userID, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("like %s %d: %w", target.table, id, repository.ErrAlreadyLiked)
		}
		return fmt.Errorf("insert like: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET likes_cnt = likes_cnt + 1 WHERE id = ?`, target.table), id,
	); err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit like: %w", err)
	}
	return nil
}

func removeLike(ctx context.Context, db *sql.DB, target likeTarget, id, userID int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := requireActive(ctx, tx, target.table, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND user_id = ?`, target.likes, target.column), id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete like rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("unlike %s %d: %w", target.table, id, repository.ErrNotLiked)
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET likes_cnt = likes_cnt - 1 WHERE id = ?`, target.table), id,
	); err != nil {
		return fmt.Errorf("decrement likes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unlike: %w", err)
	}
	return nil
}

func requireActive(ctx context.Context, tx *sql.Tx, table string, id int64) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE id = ? AND is_deleted = 0`, table), id,
	).Scan(&count); err != nil {
		return fmt.Errorf("check %s: %w", table, err)
	}
	if count == 0 {
		return fmt.Errorf("%s %d: %w", table, id, repository.ErrNotFound)
	}
	return nil
}
