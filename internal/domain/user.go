package domain

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Subscribing  bool
	IsMaster     bool
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the creator/liker projection embedded in other resources.
type UserRef struct {
	ID    int64
	Email string
	Name  string
}

func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email, Name: u.Name}
}
