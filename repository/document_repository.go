package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"employee-management/config"
	"employee-management/models"
)

type DocumentRepository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id primitive.ObjectID) (*models.DocumentView, error)
	ListByResource(ctx context.Context, ref models.ResourceRef, page, limit int64) ([]models.DocumentView, int64, error)
	ListByUploader(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]models.DocumentView, int64, error)
	IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (*models.Document, error)
	FindDocumentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Document, error)
	DeleteDocument(ctx context.Context, id primitive.ObjectID) error
	DeleteDocuments(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type documentRepository struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) DocumentRepository {
	return &documentRepository{collection: db.Collection(config.DocumentCollection)}
}

func (r *documentRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	doc.ID = primitive.NewObjectID()
	doc.DownloadCount = 0
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return insertOne(ctx, r.collection, doc)
}

func (r *documentRepository) GetDocumentByID(ctx context.Context, id primitive.ObjectID) (*models.DocumentView, error) {
	return aggregateOne[models.DocumentView](ctx, r.collection, id, documentExpansion())
}

func (r *documentRepository) ListByResource(ctx context.Context, ref models.ResourceRef, page, limit int64) ([]models.DocumentView, int64, error) {
	filter := bson.M{
		"associated_resource.resource_type": ref.Type,
		"associated_resource.resource_id":   ref.ID,
	}
	return r.page(ctx, filter, page, limit)
}

func (r *documentRepository) ListByUploader(ctx context.Context, userID primitive.ObjectID, page, limit int64) ([]models.DocumentView, int64, error) {
	return r.page(ctx, bson.M{"uploaded_by": userID}, page, limit)
}

func (r *documentRepository) page(ctx context.Context, filter bson.M, page, limit int64) ([]models.DocumentView, int64, error) {
	pipeline := stages([]bson.M{
		{"$match": filter},
		sortNewest(),
		{"$skip": (page - 1) * limit},
		{"$limit": limit},
	}, documentExpansion())

	docs, err := aggregate[models.DocumentView](ctx, r.collection, pipeline)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// IncrementDownloadCount bumps the counter and returns the updated record in
// one round trip.
func (r *documentRepository) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$inc": bson.M{"download_count": 1}}

	var doc models.Document
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment download count: %w", err)
	}
	return &doc, nil
}

func (r *documentRepository) FindDocumentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Document, error) {
	return findAll[models.Document](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *documentRepository) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, r.collection, bson.M{"_id": id})
}

func (r *documentRepository) DeleteDocuments(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete documents: %w", err)
	}
	return res.DeletedCount, nil
}
