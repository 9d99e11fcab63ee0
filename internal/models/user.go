package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the persisted member record. PasswordHash and RefreshToken are
// never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Gender       string             `bson:"gender" json:"gender"`
	Semester     int                `bson:"semester" json:"semester"`
	Branch       string             `bson:"branch" json:"branch"`
	RollNo       string             `bson:"rollNo" json:"rollNo"`
	Course       string             `bson:"course" json:"course"`
	ContactNo    string             `bson:"contactNo" json:"contactNo"`
	ProfilePic   string             `bson:"profilePic,omitempty" json:"profilePic,omitempty"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// PublicUser is the projection returned from register and login.
type PublicUser struct {
	ID       primitive.ObjectID `json:"_id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

// Public returns the minimal client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
