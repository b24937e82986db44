package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rayansaffron/storefront/models"
)

type ProductRepository struct {
	c collection[models.Product]
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{c: collection[models.Product]{coll: db.Collection("products"), name: "Products", noun: "product"}}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	id, err := r.c.insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	return r.c.list(ctx)
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	return r.c.get(ctx, id)
}

// Update sets the given bson fields and returns the stored document.
func (r *ProductRepository) Update(ctx context.Context, id string, set bson.M) (*models.Product, error) {
	set["updatedAt"] = time.Now().UTC()
	return r.c.update(ctx, id, set)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.c.count(ctx)
}
