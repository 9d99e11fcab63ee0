package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a plain club event document. No invariants beyond required
// fields at creation.
type Event struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	StartingDate string             `bson:"startingDate" json:"startingDate"`
	Time         string             `bson:"time" json:"time"`
	Location     string             `bson:"location" json:"location"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
