package domain

import "time"

const (
	NameMinLength = 2
	NameMaxLength = 10
)

// Category is hard-deleted; posts reference it by name.
type Category struct {
	ID        int64
	Name      string
	CreatedBy UserRef
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tag is soft-deleted through IsDeleted.
type Tag struct {
	ID        int64
	Name      string
	CreatedBy UserRef
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
