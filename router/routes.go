package router

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	handler "github.com/rayansaffron/storefront/handlers"
	"github.com/rayansaffron/storefront/middleware"
	"github.com/rayansaffron/storefront/upload"
)

type Tokens interface {
	handler.TokenIssuer
	middleware.TokenParser
}

// Deps is everything the routes need. Chat may be nil.
type Deps struct {
	Users      handler.UserStore
	Orders     handler.OrderStore
	Products   handler.ProductStore
	Blogs      handler.BlogStore
	Tokens     Tokens
	Uploads    middleware.Processor
	Events     middleware.EventPublisher
	Notifier   handler.Notifier
	Chat       handler.ChatModel
	AssetStore string
	Logger     *slog.Logger
	AccessLog  bool
}

func SetupRoutes(app *fiber.App, d Deps) {
	app.Get("/health", handler.Health(d.AssetStore))

	api := app.Group("/api")
	if d.AccessLog {
		api.Use(logger.New())
	}

	authed := middleware.Auth(d.Tokens)
	admin := middleware.Admin()

	// Auth
	authH := handler.NewAuthHandler(d.Users, d.Tokens)
	userH := handler.NewUserHandler(d.Users)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authH.Register)
	authGroup.Post("/login", authH.Login)
	authGroup.Get("/users", authed, admin, userH.ListUsers)
	authGroup.Delete("/users/:id", authed, admin, userH.DeleteUser)

	// Products
	productH := handler.NewProductHandler(d.Products, d.Logger)
	products := api.Group("/products")
	products.Get("/", productH.List)
	products.Get("/:id", productH.Get)
	products.Post("/", authed, admin,
		middleware.Upload(d.Uploads, upload.ProductPolicy().Require("productImage"), "products.create", d.Events, d.Logger),
		productH.Create)
	products.Put("/:id", authed, admin,
		middleware.Upload(d.Uploads, upload.ProductPolicy(), "products.update", d.Events, d.Logger),
		productH.Update)
	products.Delete("/:id", authed, admin, productH.Delete)

	// Blog
	blogH := handler.NewBlogHandler(d.Blogs, d.Logger)
	blog := api.Group("/blog")
	blog.Get("/", blogH.List)
	blog.Get("/:id", blogH.Get)
	blog.Post("/", authed, admin,
		middleware.Upload(d.Uploads, upload.BlogPolicy(), "blog.create", d.Events, d.Logger),
		blogH.Create)
	blog.Put("/:id", authed, admin, blogH.Update)
	blog.Delete("/:id", authed, admin, blogH.Delete)

	// Orders
	orderH := handler.NewOrderHandler(d.Orders, d.Notifier, d.Logger)
	api.Post("/order", orderH.Submit)
	api.Get("/orders", authed, admin, orderH.List)
	api.Post("/orders/:id/cancel", authed, admin, orderH.Cancel)

	// Contact, dashboard, chat
	api.Post("/feature/send-email", handler.NewFeatureHandler(d.Notifier).SendEmail)
	api.Get("/admin/stats", authed, admin, handler.NewAdminHandler(d.Products, d.Users, d.Orders, d.Blogs).Stats)
	api.Post("/chat", handler.NewChatHandler(d.Chat, d.Logger).Message)
}
