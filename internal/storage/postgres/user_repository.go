package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gravadigital/rankengine-api/internal/domain/reviewer"
	"github.com/gravadigital/rankengine-api/internal/logger"
)

// PostgresUserRepository implements UserRepository using GORM
type PostgresUserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *PostgresUserRepository) Create(user *reviewer.User) error {
	r.log.Debug("creating user", "email", user.Email, "name", user.Name)

	if err := user.Validate(); err != nil {
		r.log.Error("user validation failed", "error", err)
		return fmt.Errorf("user validation failed: %w", err)
	}

	var existing reviewer.User
	if err := r.db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		r.log.Error("user with email already exists", "email", user.Email)
		return fmt.Errorf("user with email %s already exists", user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("failed to check existing user", "email", user.Email, "error", err)
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	if err := r.db.Create(user).Error; err != nil {
		r.log.Error("failed to create user", "error", err, "email", user.Email)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created successfully", "id", user.ID, "email", user.Email)
	return nil
}

func (r *PostgresUserRepository) GetByID(id string) (*reviewer.User, error) {
	r.log.Debug("retrieving user by ID", "user_id", id)

	userID, err := uuid.Parse(id)
	if err != nil {
		r.log.Error("invalid user ID format", "id", id, "error", err)
		return nil, errors.New("invalid user ID format")
	}

	var user reviewer.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", "id", id)
			return nil, errors.New("user not found")
		}
		r.log.Error("failed to get user by ID", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	r.log.Debug("user retrieved successfully", "id", user.ID, "email", user.Email)
	return &user, nil
}

func (r *PostgresUserRepository) GetByEmail(email string) (*reviewer.User, error) {
	r.log.Debug("retrieving user by email", "email", email)

	if email == "" {
		r.log.Error("empty email provided")
		return nil, errors.New("email cannot be empty")
	}

	var user reviewer.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", "email", email)
			return nil, errors.New("user not found")
		}
		r.log.Error("failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	r.log.Debug("user retrieved successfully", "id", user.ID, "email", user.Email)
	return &user, nil
}

func (r *PostgresUserRepository) GetAll() ([]*reviewer.User, error) {
	var users []*reviewer.User
	if err := r.db.Find(&users).Error; err != nil {
		r.log.Error("failed to get all users", "error", err)
		return nil, err
	}

	r.log.Debug("retrieved all users", "count", len(users))
	return users, nil
}

func (r *PostgresUserRepository) Update(user *reviewer.User) error {
	r.log.Debug("updating user", "id", user.ID, "email", user.Email)

	if err := user.Validate(); err != nil {
		r.log.Error("user validation failed", "error", err)
		return fmt.Errorf("user validation failed: %w", err)
	}

	var existing reviewer.User
	if err := r.db.First(&existing, user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Error("user not found for update", "id", user.ID)
			return errors.New("user not found")
		}
		r.log.Error("failed to check user existence for update", "id", user.ID, "error", err)
		return fmt.Errorf("failed to check user existence: %w", err)
	}

	var emailUser reviewer.User
	if err := r.db.Where("email = ? AND id != ?", user.Email, user.ID).First(&emailUser).Error; err == nil {
		r.log.Error("another user with email already exists", "email", user.Email, "current_id", user.ID)
		return fmt.Errorf("another user with email %s already exists", user.Email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		r.log.Error("failed to check email uniqueness", "email", user.Email, "error", err)
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}

	if err := r.db.Save(user).Error; err != nil {
		r.log.Error("failed to update user", "error", err, "id", user.ID)
		return fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated successfully", "id", user.ID, "email", user.Email)
	return nil
}
