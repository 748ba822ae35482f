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
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

var newestFirst = bson.D{{Key: "created_at", Value: -1}}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert into %s: %w", coll.Name(), ErrDuplicate)
		}
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline []bson.M) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// aggregateOne runs pipeline for a single _id and returns ErrNotFound when
// nothing matches.
func aggregateOne[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, expand []bson.M) (*T, error) {
	pipeline := append([]bson.M{{"$match": bson.M{"_id": id}}}, expand...)
	rows, err := aggregate[T](ctx, coll, pipeline)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

// updateByID applies $set to a single record and stamps updated_at. When
// after is false the document as it was before the update is returned.
func updateByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, set bson.M, after bool) (*T, error) {
	fields := bson.M{"updated_at": time.Now()}
	for k, v := range set {
		fields[k] = v
	}

	returnDoc := options.Before
	if after {
		returnDoc = options.After
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(returnDoc)

	var out T
	err := coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("update %s: %w", coll.Name(), ErrDuplicate)
		}
		return nil, fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, filter bson.M) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var hidePassword = bson.M{"$project": bson.M{"password": 0}}

// lookupOne expands a single reference stored in localField into the field
// as. Unresolved references leave as absent.
func lookupOne(from, localField, as string, inner ...bson.M) []bson.M {
	refVar := "id_" + as
	pipeline := bson.A{bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$" + refVar}}}}}
	for _, stage := range inner {
		pipeline = append(pipeline, stage)
	}
	return []bson.M{
		{"$lookup": bson.M{
			"from":     from,
			"let":      bson.M{refVar: "$" + localField},
			"pipeline": pipeline,
			"as":       as,
		}},
		{"$unwind": bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}},
	}
}

func stages(groups ...[]bson.M) []bson.M {
	var out []bson.M
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func findOneAndDelete[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID) (*T, error) {
	var out T
	if err := coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	return &out, nil
}
