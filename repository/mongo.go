package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rayansaffron/storefront/apperr"
)

// collection is the typed CRUD shared by the product and blog repositories.
type collection[T any] struct {
	coll *mongo.Collection
	name string
	noun string
}

func (c collection[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, apperr.E(apperr.KindPersistenceFailed, "repository."+c.name+".Create", err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (c collection[T]) list(ctx context.Context) ([]T, error) {
	op := "repository." + c.name + ".List"

	cur, err := c.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	return docs, nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	op := "repository." + c.name + ".Get"

	oid, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	var doc T
	if err := c.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Errorf(apperr.KindNotFound, op, "%s not found", c.noun)
		}
		return nil, apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	return &doc, nil
}

func (c collection[T]) update(ctx context.Context, id string, set bson.M) (*T, error) {
	op := "repository." + c.name + ".Update"

	oid, err := parseID(op, id)
	if err != nil {
		return nil, err
	}
	var doc T
	err = c.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Errorf(apperr.KindNotFound, op, "%s not found", c.noun)
		}
		return nil, apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	return &doc, nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	op := "repository." + c.name + ".Delete"

	oid, err := parseID(op, id)
	if err != nil {
		return err
	}
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	if res.DeletedCount == 0 {
		return apperr.Errorf(apperr.KindNotFound, op, "%s not found", c.noun)
	}
	return nil
}

func (c collection[T]) count(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, apperr.E(apperr.KindPersistenceFailed, "repository."+c.name+".Count", err)
	}
	return n, nil
}

// parseID treats a malformed id as a missing document.
func parseID(op, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Errorf(apperr.KindNotFound, op, "invalid id %q", id)
	}
	return oid, nil
}
