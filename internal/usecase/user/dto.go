package user

import domain "user-crud-service/internal/domain/user"

// CreateUserRequest represents the request payload for creating a new user.
// A nil field was not supplied by the caller.
type CreateUserRequest struct {
	Name  *string `validate:"omitempty,max=50"`
	Email *string `validate:"omitempty,max=255"`
}

// UpdateUserRequest represents the request payload for a partial update.
// Only non-nil fields are written.
type UpdateUserRequest struct {
	ID    int64
	Name  *string `validate:"omitempty,max=50"`
	Email *string `validate:"omitempty,max=255"`
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}

func fromDomain(u *domain.User) *User {
	return &User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
