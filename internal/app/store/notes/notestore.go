package notestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dalemusser/notehub/internal/app/system/paging"
	"github.com/dalemusser/notehub/internal/domain/models"
)

var (
	// ErrNotFound is returned when no note matches the given ID for the
	// given owner. A note owned by someone else is indistinguishable
	// from a missing one.
	ErrNotFound = errors.New("note not found")
	// ErrInvalidID is returned when an ID string is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid note id")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notes")}
}

// CreateFields holds the validated input for a new note.
type CreateFields struct {
	Title    string
	Content  string
	Tags     []string
	Category string
}

// Create inserts a new note for the given owner. An empty category
// defaults; nil tags are stored as an empty array so list responses
// never carry null.
func (s *Store) Create(ctx context.Context, owner primitive.ObjectID, f CreateFields) (*models.Note, error) {
	if f.Category == "" {
		f.Category = models.DefaultNoteCategory
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}

	now := time.Now()
	n := models.Note{
		ID:        primitive.NewObjectID(),
		Title:     f.Title,
		Content:   f.Content,
		Tags:      f.Tags,
		Category:  f.Category,
		UserID:    owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListFilter narrows a listing to one category and/or one tag.
type ListFilter struct {
	Category string
	Tag      string
}

// ListResult is one page of an owner's notes plus pagination totals.
type ListResult struct {
	Notes []models.Note `json:"notes"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Pages int           `json:"pages"`
}

// List returns one page of the owner's notes, newest first, optionally
// narrowed by category and tag. Total counts every match, not just the
// returned page.
func (s *Store) List(ctx context.Context, owner primitive.ObjectID, f ListFilter, page, limit int) (*ListResult, error) {
	filter := bson.M{"user": owner}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	// _id breaks ties so pages are stable when created_at collides.
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(paging.Skip(page, limit)).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	notes := []models.Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, err
	}

	return &ListResult{
		Notes: notes,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: paging.PageCount(total, limit),
	}, nil
}

// GetOne loads a note by ID hex, scoped to the owner.
func (s *Store) GetOne(ctx context.Context, owner primitive.ObjectID, idHex string) (*models.Note, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}

	var n models.Note
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "user": owner}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// UpdateFields holds the fields of a partial note update. Nil fields
// are left unchanged.
type UpdateFields struct {
	Title    *string
	Content  *string
	Tags     *[]string
	Category *string
}

// Update applies the supplied fields to the owner's note and returns
// the updated record. An update with no fields still bumps updated_at.
func (s *Store) Update(ctx context.Context, owner primitive.ObjectID, idHex string, f UpdateFields) (*models.Note, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, ErrInvalidID
	}

	set := bson.M{"updated_at": time.Now()}
	if f.Title != nil {
		set["title"] = *f.Title
	}
	if f.Content != nil {
		set["content"] = *f.Content
	}
	if f.Tags != nil {
		tags := *f.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if f.Category != nil {
		cat := *f.Category
		if cat == "" {
			cat = models.DefaultNoteCategory
		}
		set["category"] = cat
	}

	var n models.Note
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user": owner},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// Delete removes the owner's note. Returns ErrNotFound when nothing
// matched, which covers both missing notes and notes owned by others.
func (s *Store) Delete(ctx context.Context, owner primitive.ObjectID, idHex string) error {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return ErrInvalidID
	}

	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "user": owner})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
