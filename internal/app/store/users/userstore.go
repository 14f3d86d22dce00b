package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/notehub/internal/app/system/normalize"
	"github.com/dalemusser/notehub/internal/domain/models"
)

var (
	// ErrNotFound is returned when no user matches the given ID.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidID is returned when an ID string is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid user id")

	errBadRole = errors.New(`role must be "user"|"admin"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GoogleIdentity is the profile returned by Google for a signed-in user.
type GoogleIdentity struct {
	GoogleID string
	Email    string
	Name     string
	Picture  string
}

// FindOrCreateFromGoogle resolves a Google identity to a local user.
// An existing user (matched by normalized email) has name, picture, and
// google_id refreshed from the provider; a new user is created with the
// default role. The returned record reflects the refreshed state.
//
// Concurrent first sign-ins for the same email race on the unique email
// index; the loser re-reads the winner's document.
func (s *Store) FindOrCreateFromGoogle(ctx context.Context, ident GoogleIdentity) (*models.User, error) {
	email := normalize.Email(ident.Email)

	var u models.User
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		now := time.Now()
		u = models.User{
			ID:        primitive.NewObjectID(),
			Email:     email,
			Name:      normalize.Name(ident.Name),
			Picture:   ident.Picture,
			GoogleID:  ident.GoogleID,
			Role:      models.RoleUser,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.c.InsertOne(ctx, u); err != nil {
			if !wafflemongo.IsDup(err) {
				return nil, err
			}
			// Lost the insert race; fall through to refresh the
			// document the winner created.
		} else {
			return &u, nil
		}
	} else if err != nil {
		return nil, err
	}

	set := bson.M{
		"name":       normalize.Name(ident.Name),
		"picture":    ident.Picture,
		"google_id":  ident.GoogleID,
		"updated_at": time.Now(),
	}
	var refreshed models.User
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&refreshed)
	if err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// GetByID loads a user by ID hex. Returns ErrInvalidID for a malformed
// hex string and ErrNotFound when no user matches.
func (s *Store) GetByID(ctx context.Context, idHex string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}

	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns all users newest first. The google_id field is excluded
// from the results; it never leaves the server.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"google_id": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole updates a user's role and returns the updated record. Returns
// errBadRole-wrapped validation for unknown roles, ErrInvalidID for bad
// hex, ErrNotFound when no user matches.
func (s *Store) SetRole(ctx context.Context, idHex, role string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return nil, errBadRole
	}

	var u models.User
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// DeletedUser is the summary of a removed account.
type DeletedUser struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
	Role  string             `json:"role"`
}

// Delete removes a user and returns a summary of the deleted account.
// Returns ErrInvalidID for bad hex and ErrNotFound when no user matches.
func (s *Store) Delete(ctx context.Context, idHex string) (*DeletedUser, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}

	var u models.User
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &DeletedUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

// IsBadRole reports whether err is the role-validation error.
func IsBadRole(err error) bool { return errors.Is(err, errBadRole) }
