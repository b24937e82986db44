package handler

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/rayansaffron/storefront/models"
)

type UserStore interface {
	Register(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	List(ctx context.Context) ([]models.Order, error)
	Cancel(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type BlogStore interface {
	Create(ctx context.Context, b *models.Blog) error
	List(ctx context.Context) ([]models.Blog, error)
	Get(ctx context.Context, id string) (*models.Blog, error)
	Update(ctx context.Context, id string, set bson.M) (*models.Blog, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

type Notifier interface {
	NotifyOrder(ctx context.Context, order *models.Order) error
	NotifyContact(ctx context.Context, email string) error
}

type ChatModel interface {
	Reply(ctx context.Context, message string) (string, error)
}
