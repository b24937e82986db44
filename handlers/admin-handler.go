package handler

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rayansaffron/storefront/response"
)

type AdminHandler struct {
	products Counter
	users    Counter
	orders   Counter
	blogs    Counter
}

func NewAdminHandler(products, users, orders, blogs Counter) *AdminHandler {
	return &AdminHandler{products: products, users: users, orders: orders, blogs: blogs}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	var products, users, orders, blogs int64

	g, ctx := errgroup.WithContext(c.UserContext())
	count := func(dst *int64, src Counter) {
		g.Go(func() error {
			n, err := src.Count(ctx)
			*dst = n
			return err
		})
	}
	count(&products, h.products)
	count(&users, h.users)
	count(&orders, h.orders)
	count(&blogs, h.blogs)
	if err := g.Wait(); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, fiber.StatusOK, "Dashboard stats", fiber.Map{
		"products": products,
		"users":    users,
		"orders":   orders,
		"blog":     blogs,
	})
}
