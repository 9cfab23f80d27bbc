package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-management-service/internal/domain/user"
)

// UserRepoPG implements the Repository interface using GORM.
// It runs against PostgreSQL in production and SQLite locally and in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
// Email is indexed but deliberately not unique.
type UserSchema struct {
	ID                      int64      `gorm:"primaryKey;autoIncrement"`
	Name                    string     `gorm:"not null"`
	Email                   string     `gorm:"not null;index"`
	Password                string     `gorm:"not null"`
	IsEmailVerified         bool       `gorm:"not null;default:false"`
	VerificationToken       *string    `gorm:"index"`
	VerificationTokenExpiry *time.Time // paired with VerificationToken
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate provisions the users table.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

func toSchema(u *user.User) UserSchema {
	return UserSchema{
		ID:                      u.ID,
		Name:                    u.Name,
		Email:                   u.Email,
		Password:                u.Password,
		IsEmailVerified:         u.IsEmailVerified,
		VerificationToken:       u.VerificationToken,
		VerificationTokenExpiry: u.VerificationTokenExpiry,
	}
}

func (m UserSchema) toDomain() *user.User {
	return &user.User{
		ID:                      m.ID,
		Name:                    m.Name,
		Email:                   m.Email,
		Password:                m.Password,
		IsEmailVerified:         m.IsEmailVerified,
		VerificationToken:       m.VerificationToken,
		VerificationTokenExpiry: m.VerificationTokenExpiry,
	}
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := toSchema(u)
	model.ID = 0

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Update overwrites every mutable column of an existing user.
// It returns user.ErrUserNotFound when no row has the given id.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	// A map keeps nil token fields in the statement so they are written as NULL.
	result := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":                      u.Name,
		"email":                     u.Email,
		"password":                  u.Password,
		"is_email_verified":         u.IsEmailVerified,
		"verification_token":        u.VerificationToken,
		"verification_token_expiry": u.VerificationTokenExpiry,
	})
	if result.Error != nil {
		r.log.Error("failed to update user in db", zap.Error(result.Error), zap.Int64("id", u.ID))
		return 0, fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("user not found for update", zap.Int64("id", u.ID))
		return 0, fmt.Errorf("%w: id=%d", user.ErrUserNotFound, u.ID)
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return u.ID, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return 0, fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		r.log.Warn("user not found for delete", zap.Int64("id", id))
		return 0, fmt.Errorf("%w: id=%d", user.ErrUserNotFound, id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, fmt.Errorf("%w: id=%d", user.ErrUserNotFound, id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByVerificationToken retrieves the user holding the given verification token.
// It returns nil, nil when no user holds it.
func (r *UserRepoPG) GetByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("verification_token = ?", token).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("no user holds verification token")
			return nil, nil
		}
		r.log.Error("failed to get user by verification token from db", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by verification token: %w", err)
	}

	return model.toDomain(), nil
}

// GetByCredentials retrieves the user whose email and password both match exactly.
// It returns nil, nil when there is no such user; among duplicates the lowest id wins.
func (r *UserRepoPG) GetByCredentials(ctx context.Context, email, password string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ? AND password = ?", email, password).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("no user matches credentials", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by credentials from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by credentials: %w", err)
	}

	return model.toDomain(), nil
}

// List retrieves every user ordered by ID.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = *model.toDomain()
	}

	return users, nil
}
