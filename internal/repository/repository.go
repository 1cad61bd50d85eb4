package repository

import "errors"

var (
	// ErrNotFound is returned when no active record matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrAlreadyLiked is returned when the liker is already in the likes set.
	ErrAlreadyLiked = errors.New("already liked")
	// ErrNotLiked is returned when the liker is not in the likes set.
	ErrNotLiked = errors.New("not liked")
)

// Filter narrows list queries. Zero values mean "no filter".
type Filter struct {
	Contains string
	Category string
	Offset   int
	Limit    int
}
