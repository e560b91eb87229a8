package user

import "context"

// User is a registered participant. Accounts are managed elsewhere.
type User struct {
	ID    int64
	Name  string
	Email string
}

// UserRepository resolves users by id.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
}
