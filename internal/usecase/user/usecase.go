package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, SQLite, a cache in front of either) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)               // Insert and return the stored row
	GetByID(ctx context.Context, id int64) (*domain.User, error)                    // NotFoundError when absent
	Update(ctx context.Context, id int64, patch domain.Patch) (*domain.User, error) // Apply patch atomically per id
	Delete(ctx context.Context, id int64) error                                     // NotFoundError when absent
	List(ctx context.Context) ([]domain.User, error)                                // All rows ordered by id
}

// Option configures a Usecase.
type Option func(*Usecase)

// WithPartialCreate controls whether CreateUser accepts a request that omits
// name or email. The default is to require both.
func WithPartialCreate(allow bool) Option {
	return func(uc *Usecase) {
		uc.allowPartialCreate = allow
	}
}

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo               Repository          // Repository for data access
	log                *zap.Logger         // Logger for structured logging
	validate           *validator.Validate // Validator for request validation
	allowPartialCreate bool
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger, opts ...Option) *Usecase {
	uc := &Usecase{repo: r, log: log, validate: validator.New()}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return apperrors.NewValidationError("", err.Error())
}

// CreateUser validates the request, applies the presence policy and stores a new user.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	uc.log.Info("creating user", zap.Bool("has_name", in.Name != nil), zap.Bool("has_email", in.Email != nil))

	if !uc.allowPartialCreate {
		if in.Name == nil {
			uc.log.Warn("create user missing field", zap.String("field", "name"))
			return nil, apperrors.NewMissingFieldError("name")
		}
		if in.Email == nil {
			uc.log.Warn("create user missing field", zap.String("field", "email"))
			return nil, apperrors.NewMissingFieldError("email")
		}
	}

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u := &domain.User{}
	domain.Patch{Name: in.Name, Email: in.Email}.Apply(u)

	created, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return fromDomain(created), nil
}

// UpdateUser writes only the supplied fields of an existing user.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	uc.log.Info("updating user", zap.Int64("id", in.ID), zap.Bool("has_name", in.Name != nil), zap.Bool("has_email", in.Email != nil))

	if in.ID <= 0 {
		return nil, notFound(in.ID)
	}

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		// A missing user outranks a bad field.
		if _, getErr := uc.repo.GetByID(ctx, in.ID); getErr != nil {
			return nil, getErr
		}
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.Update(ctx, in.ID, domain.Patch{Name: in.Name, Email: in.Email})
	if err != nil {
		uc.log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return fromDomain(u), nil
}

// DeleteUser removes a user. Deleting an id that is already gone fails with NotFoundError.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) error {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		return notFound(in.ID)
	}

	if err := uc.repo.Delete(ctx, in.ID); err != nil {
		uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return err
	}
	return nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user with non-positive id", zap.Int64("id", in.ID))
		return nil, notFound(in.ID)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}
	return fromDomain(u), nil
}

// ListUsers returns every user. An empty store yields an empty, non-nil slice.
func (uc *Usecase) ListUsers(ctx context.Context) ([]User, error) {
	uc.log.Info("listing users")

	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *fromDomain(&domainUsers[i])
	}
	return users, nil
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}
