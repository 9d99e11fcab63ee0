package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mioNacs/BLManagementSystem/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")
)

// UserRepository is the credential store. Email lookups are
// case-insensitive; every other natural key matches exactly.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByRollNo(ctx context.Context, rollNo string) (*models.User, error)
	FindByContactNo(ctx context.Context, contactNo string) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// ExistsOther reports whether another user (any user when excludeID is
	// the zero ObjectID) already holds value for the given unique field.
	ExistsOther(ctx context.Context, field, value string, excludeID primitive.ObjectID) (bool, error)
}

// EventRepository persists club events. Plain CRUD, no invariants.
type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	FindAll(ctx context.Context) ([]models.Event, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, e *models.Event) (*models.Event, error)
}
