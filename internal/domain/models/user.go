// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Every account starts as RoleUser; promotion to
// RoleAdmin is an admin-only operation.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsValidRole reports whether role is one of the known role values.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User represents an account created from a Google login.
//
// NOTE:
//   - Email is the correlation key with the identity provider and is
//     unique across all users (enforced by index).
//   - GoogleID is the provider's subject identifier. It is never
//     serialized to JSON; admin reads also exclude it at the query level.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name" json:"name"`
	Picture  string             `bson:"picture,omitempty" json:"picture,omitempty"`
	GoogleID string             `bson:"google_id,omitempty" json:"-"`
	Role     string             `bson:"role" json:"role"` // user | admin

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
