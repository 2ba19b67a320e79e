// Package reviewer models the people who submit and rank work inside a
// venue: their role, credentials, and the reputation/accuracy scores the
// ranking engine maintains for them.
package reviewer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role represents a user's role in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReviewer Role = "reviewer"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleReviewer
}

// User represents a system user: a reviewer who submits work and ranks
// peers' submissions, or an admin who configures venues and triggers
// reputation/reprocess runs.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name         string    `json:"name" gorm:"not null"`
	LastName     string    `json:"lastname"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         Role      `json:"role" gorm:"type:varchar(20);not null;default:'reviewer'"`

	// Reputation and Accuracy are venue-scoped in the database (see
	// UserAccuracyRow) but are denormalized onto the user for the most
	// recently evaluated venue, to keep read paths cheap.
	Reputation *float64 `json:"reputation,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name used by GORM.
func (User) TableName() string {
	return "users"
}

// BeforeCreate sets a UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// NewUser creates a new user with a hashed password.
func NewUser(name, lastName, email, password string, role Role) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &User{
		ID:           uuid.New(),
		Name:         name,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// NewReviewer creates a new reviewer user.
func NewReviewer(name, lastName, email, password string) (*User, error) {
	return NewUser(name, lastName, email, password, RoleReviewer)
}

// NewAdmin creates a new admin user.
func NewAdmin(name, lastName, email, password string) (*User, error) {
	return NewUser(name, lastName, email, password, RoleAdmin)
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the
// user's stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// GetFullName returns the full name of the user.
func (u *User) GetFullName() string {
	if u.LastName == "" {
		return u.Name
	}
	return fmt.Sprintf("%s %s", u.Name, u.LastName)
}

// UpdateRole safely updates the user role with validation.
func (u *User) UpdateRole(newRole Role) error {
	if !newRole.IsValid() {
		return fmt.Errorf("invalid role: %s", newRole)
	}
	u.Role = newRole
	u.UpdatedAt = time.Now()
	return nil
}

// IsAdmin checks if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsReviewer checks if the user has reviewer role.
func (u *User) IsReviewer() bool {
	return u.Role == RoleReviewer
}

// Validate checks if the user data is valid.
func (u *User) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password is required")
	}
	if !u.Role.IsValid() {
		return fmt.Errorf("role must be 'admin' or 'reviewer', got: %s", u.Role)
	}
	return nil
}

// GetID and GetName implement common.UserInterface to avoid circular
// imports between reviewer and the ranking storage adapter.
func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) GetName() string {
	return u.Name
}

// CanRunReputation reports whether the user may trigger a reputation or
// reprocess run for a venue. Only admins may: reputation scores feed
// directly into final grades, so letting a reviewer recompute their own
// standing would be a conflict of interest.
func (u *User) CanRunReputation() bool {
	return u.IsAdmin()
}
