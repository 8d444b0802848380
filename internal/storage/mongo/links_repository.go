package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shortloop/shortloop/internal/processing/links"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const linksCollection = "links"

type linkDoc struct {
	ID          string     `bson:"_id"`
	Code        string     `bson:"code"`
	OriginalURL string     `bson:"originalUrl"`
	IsActive    bool       `bson:"isActive"`
	CreatedAt   time.Time  `bson:"createdAt"`
	ExpiresAt   *time.Time `bson:"expiresAt,omitempty"`
	OwnerID     string     `bson:"ownerId,omitempty"`
}

// LinksRepository is the MongoDB-backed durable store for links.
type LinksRepository struct {
	collection *mongo.Collection
}

// NewLinksRepository ensures the unique index on code that backs both lookup
// and the duplicate-alias guarantee.
func NewLinksRepository(ctx context.Context, db *mongo.Database) (*LinksRepository, error) {
	collection := db.Collection(linksCollection)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create links code index: %w", err)
	}

	return &LinksRepository{collection: collection}, nil
}

func (r *LinksRepository) Insert(ctx context.Context, link *links.Link) error {
	doc := linkDoc{
		ID:          link.ID,
		Code:        link.Code,
		OriginalURL: link.OriginalURL,
		IsActive:    link.IsActive,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		OwnerID:     link.OwnerID,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return links.ErrCodeTaken
		}
		return fmt.Errorf("insert link: %w", err)
	}

	return nil
}

func (r *LinksRepository) FindByCode(ctx context.Context, code string) (*links.Link, error) {
	var doc linkDoc
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, links.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find link by code: %w", err)
	}

	return &links.Link{
		ID:          doc.ID,
		Code:        doc.Code,
		OriginalURL: doc.OriginalURL,
		IsActive:    doc.IsActive,
		CreatedAt:   doc.CreatedAt,
		ExpiresAt:   doc.ExpiresAt,
		OwnerID:     doc.OwnerID,
	}, nil
}
