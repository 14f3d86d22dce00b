// internal/domain/models/note.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultNoteCategory is applied when a note is created without a category.
const DefaultNoteCategory = "general"

// Note is a personal note owned by exactly one user.
//
// UserID is set at creation from the authenticated caller and never
// changes; every store operation filters on it, so a note belonging to
// another user is indistinguishable from a missing one.
type Note struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title    string             `bson:"title" json:"title"`
	Content  string             `bson:"content" json:"content"`
	Tags     []string           `bson:"tags" json:"tags"`
	Category string             `bson:"category" json:"category"`
	UserID   primitive.ObjectID `bson:"user" json:"user"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
