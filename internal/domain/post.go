package domain

import "time"

// Post is an article authored by a user and tagged with categories.
type Post struct {
	ID         int64
	Title      string
	Content    string
	Categories []string
	LikesCnt   int
	Liked      bool
	CreatedBy  UserRef
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Comment belongs to a post and optionally replies to another comment of the same post.
type Comment struct {
	ID        int64
	PostID    int64
	ParentID  *int64
	Content   string
	LikesCnt  int
	Liked     bool
	CreatedBy UserRef
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment describes a stored file linked to a post.
type Attachment struct {
	Key          string
	Name         string
	Size         int64
	URL          string
	LastModified *time.Time
}
