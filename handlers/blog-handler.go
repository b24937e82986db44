package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/middleware"
	"github.com/rayansaffron/storefront/models"
	"github.com/rayansaffron/storefront/response"
)

const (
	fieldBlogImage  = "blogImage"
	fieldBlogImages = "blogImages"
)

type blogPayload struct {
	BlogTitle *models.LocalizedText `json:"blogTitle"`
	BlogInfo  *models.LocalizedText `json:"blogInfo"`
}

type BlogHandler struct {
	blogs BlogStore
	log   *slog.Logger
}

func NewBlogHandler(blogs BlogStore, log *slog.Logger) *BlogHandler {
	if log == nil {
		log = slog.Default()
	}
	return &BlogHandler{blogs: blogs, log: log}
}

func (h *BlogHandler) List(c *fiber.Ctx) error {
	lang := c.Query("lang", "en")

	blogs, err := h.blogs.List(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}

	views := make([]models.BlogView, 0, len(blogs))
	for i := range blogs {
		views = append(views, blogs[i].Localize(lang))
	}
	return response.Success(c, fiber.StatusOK, "Blogs found", views)
}

func (h *BlogHandler) Get(c *fiber.Ctx) error {
	blog, err := h.blogs.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Blog found", blog.Localize(c.Query("lang", "en")))
}

func (h *BlogHandler) Create(c *fiber.Ctx) error {
	const op = "handler.CreateBlog"
	result := middleware.UploadResult(c)

	input := new(blogPayload)
	if err := parseDataField(c, input, true); err != nil {
		logOrphans(h.log, result, err)
		return response.Error(c, err)
	}
	if err := input.check(op); err != nil {
		logOrphans(h.log, result, err)
		return response.Error(c, err)
	}

	blog := &models.Blog{
		BlogTitle:  *input.BlogTitle,
		BlogInfo:   *input.BlogInfo,
		BlogImages: imageRefs(result.URLs(fieldBlogImages)),
	}
	if primary := result.First(fieldBlogImage); primary != nil {
		blog.BlogImage = primary.URL
	}

	if err := h.blogs.Create(c.UserContext(), blog); err != nil {
		logOrphans(h.log, result, err)
		return response.Error(c, err)
	}

	return response.Success(c, fiber.StatusCreated, "Blog created successfully", fiber.Map{
		"blog":            blog,
		"imageProcessing": result.Summary,
	})
}

// Update changes text only.
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	const op = "handler.UpdateBlog"

	input := new(blogPayload)
	if err := parseDataField(c, input, false); err != nil {
		return response.Error(c, err)
	}

	set := bson.M{}
	if input.BlogTitle != nil {
		if input.BlogTitle.En == "" {
			return response.Error(c, apperr.Errorf(apperr.KindInvalidRequest, op, "blogTitle.en is required"))
		}
		set["blogTitle"] = *input.BlogTitle
	}
	if input.BlogInfo != nil {
		if input.BlogInfo.En == "" {
			return response.Error(c, apperr.Errorf(apperr.KindInvalidRequest, op, "blogInfo.en is required"))
		}
		set["blogInfo"] = *input.BlogInfo
	}

	blog, err := h.blogs.Update(c.UserContext(), c.Params("id"), set)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Blog updated successfully", blog)
}

func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	if err := h.blogs.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Blog deleted successfully", nil)
}

func (p *blogPayload) check(op string) error {
	if p.BlogTitle == nil || p.BlogTitle.En == "" {
		return apperr.Errorf(apperr.KindInvalidRequest, op, "blogTitle.en is required")
	}
	if p.BlogInfo == nil || p.BlogInfo.En == "" {
		return apperr.Errorf(apperr.KindInvalidRequest, op, "blogInfo.en is required")
	}
	return nil
}
