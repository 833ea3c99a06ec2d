package grpc

// User is the wire form of a stored user.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateUserRequest carries the fields of a new user. A nil field was not sent.
type CreateUserRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// GetUserRequest names the user to fetch.
type GetUserRequest struct {
	ID int64 `json:"id"`
}

// UpdateUserRequest carries a partial update. Only non-nil fields are written.
type UpdateUserRequest struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// DeleteUserRequest names the user to remove.
type DeleteUserRequest struct {
	ID int64 `json:"id"`
}

// DeleteUserResponse is empty on success.
type DeleteUserResponse struct{}

// ListUsersRequest takes no arguments.
type ListUsersRequest struct{}

// ListUsersResponse holds every stored user ordered by id.
type ListUsersResponse struct {
	Users []User `json:"users"`
}
