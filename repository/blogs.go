package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rayansaffron/storefront/models"
)

type BlogRepository struct {
	c collection[models.Blog]
}

func NewBlogRepository(db *mongo.Database) *BlogRepository {
	return &BlogRepository{c: collection[models.Blog]{coll: db.Collection("blogs"), name: "Blogs", noun: "blog"}}
}

func (r *BlogRepository) Create(ctx context.Context, b *models.Blog) error {
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	id, err := r.c.insert(ctx, b)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BlogRepository) List(ctx context.Context) ([]models.Blog, error) {
	return r.c.list(ctx)
}

func (r *BlogRepository) Get(ctx context.Context, id string) (*models.Blog, error) {
	return r.c.get(ctx, id)
}

// Update sets the given bson fields and returns the stored document.
func (r *BlogRepository) Update(ctx context.Context, id string, set bson.M) (*models.Blog, error) {
	set["updatedAt"] = time.Now().UTC()
	return r.c.update(ctx, id, set)
}

func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

func (r *BlogRepository) Count(ctx context.Context) (int64, error) {
	return r.c.count(ctx)
}
