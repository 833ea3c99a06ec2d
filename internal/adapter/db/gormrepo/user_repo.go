package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"user-crud-service/internal/domain/user"
	apperrors "user-crud-service/pkg/errors"
)

// UserRepo implements the user Repository interface on top of GORM.
// It works with any dialector; row locks are only requested on PostgreSQL.
type UserRepo struct {
	db       *gorm.DB    // GORM database connection
	log      *zap.Logger // Structured logger for database operations
	lockRows bool        // SELECT ... FOR UPDATE inside update transactions
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{
		db:       db,
		log:      log,
		lockRows: db.Dialector.Name() == "postgres",
	}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"` // Unique identifier with auto-increment
	Name  string `gorm:"size:50"`                  // User's name
	Email string `gorm:"size:255"`                 // User's email address
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

func notFound(id int64) error {
	return apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// Create inserts a new user into the database and returns the stored row.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// Update applies patch to the row with the given id inside a transaction,
// so concurrent updates of one id cannot lose each other's fields.
func (r *UserRepo) Update(ctx context.Context, id int64, patch user.Patch) (*user.User, error) {
	var model UserSchema

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if r.lockRows {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&model, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(id)
			}
			return apperrors.NewInternalError("failed to load user", err)
		}

		if patch.IsEmpty() {
			return nil
		}

		updates := make(map[string]any, 2)
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Email != nil {
			updates["email"] = *patch.Email
		}

		if err := tx.Model(&model).Updates(updates).Error; err != nil {
			return apperrors.NewInternalError("failed to update user", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			r.log.Warn("user not found for update", zap.Int64("id", id))
		} else {
			r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		}
		return nil, err
	}

	u := model.toDomain()
	patch.Apply(u)

	r.log.Info("user updated in db", zap.Int64("id", id))
	return u, nil
}

// Delete removes a user from the database by ID.
// The affected row count decides NotFound, so a repeated delete fails.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.Int64("id", id))
		return apperrors.NewInternalError("failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.Int64("id", id))
		return notFound(id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Select(user.Fields).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, notFound(id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return model.toDomain(), nil
}

// List retrieves all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Select(user.Fields).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}
