package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mioNacs/BLManagementSystem/internal/models"
)

var (
	ErrDuplicateUsername      = errors.New("Username already exists. Please choose a different username.")
	ErrDuplicateEmail         = errors.New("Email already exists. Please use a different email address.")
	ErrDuplicateRollNo        = errors.New("Roll number already exists in our system.")
	ErrDuplicateContact       = errors.New("Contact number already exists in our system.")
	ErrUserNotFound           = errors.New("Invalid username or email")
	ErrInvalidPassword        = errors.New("Invalid password")
	ErrInvalidRefreshToken    = errors.New("Invalid refresh token")
	ErrInvalidResetToken      = errors.New("Invalid or expired token")
	ErrEmailNotFound          = errors.New("Email address not found in our system")
	ErrInvalidCurrentPassword = errors.New("Current password is incorrect")
	ErrAccountNotFound        = errors.New("User not found")
	ErrInternal               = errors.New("internal server error")
)

// RegisterInput is the full profile plus plaintext password.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	Gender     string
	Semester   int
	Branch     string
	RollNo     string
	Course     string
	ContactNo  string
	ProfilePic string
}

// LoginInput carries one identifier (email preferred when both are set)
// plus the plaintext password.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// UpdateProfileInput holds the mutable profile fields; nil means "leave
// unchanged".
type UpdateProfileInput struct {
	Username   *string
	Email      *string
	Gender     *string
	Semester   *int
	Branch     *string
	RollNo     *string
	Course     *string
	ContactNo  *string
	ProfilePic *string
}

// AuthResult is returned by every operation that establishes a session.
type AuthResult struct {
	User         models.PublicUser
	AccessToken  string
	RefreshToken string
}

// AuthService is the session controller: it owns every state transition
// between Anonymous and Authenticated.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	CurrentUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID primitive.ObjectID, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, in UpdateProfileInput) (*models.User, error)
}
