package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/middleware"
	"github.com/rayansaffron/storefront/models"
	"github.com/rayansaffron/storefront/response"
	"github.com/rayansaffron/storefront/upload"
)

const (
	fieldProductImage   = "productImage"
	fieldProductDetails = "productDetailsImages"
)

type productPayload struct {
	ProductName        *models.LocalizedText `json:"productname"`
	ProductDescription *models.LocalizedText `json:"productDescription"`
	Type               *models.LocalizedText `json:"type"`
	ProductAmount      *float64              `json:"productamount" validate:"omitempty,gt=0"`
	ProductPrice       *float64              `json:"productPrice" validate:"omitempty,gte=0"`
	DiscountPrice      *float64              `json:"discountPrice" validate:"omitempty,gte=0"`
	Stock              *int                  `json:"stock" validate:"omitempty,gte=0"`
}

func (p *productPayload) updates() bson.M {
	set := bson.M{}
	if p.ProductName != nil {
		set["productname"] = *p.ProductName
	}
	if p.ProductDescription != nil {
		set["productDescription"] = *p.ProductDescription
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.ProductAmount != nil {
		set["productamount"] = *p.ProductAmount
	}
	if p.ProductPrice != nil {
		set["productPrice"] = *p.ProductPrice
	}
	if p.DiscountPrice != nil {
		set["discountPrice"] = *p.DiscountPrice
	}
	if p.Stock != nil {
		set["stock"] = *p.Stock
	}
	return set
}

type ProductHandler struct {
	products ProductStore
	log      *slog.Logger
}

func NewProductHandler(products ProductStore, log *slog.Logger) *ProductHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProductHandler{products: products, log: log}
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	lang := c.Query("lang", "en")

	products, err := h.products.List(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}

	views := make([]models.ProductView, 0, len(products))
	for i := range products {
		views = append(views, products[i].Localize(lang))
	}
	return response.Success(c, fiber.StatusOK, "Products found", views)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Product found", product.Localize(c.Query("lang", "en")))
}

// Create runs after the upload middleware; the images are already published.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	const op = "handler.CreateProduct"
	result := middleware.UploadResult(c)

	input := new(productPayload)
	if err := parseDataField(c, input, true); err != nil {
		return h.abort(c, result, err)
	}
	if input.ProductName == nil || input.ProductName.En == "" {
		return h.abort(c, result, apperr.Errorf(apperr.KindInvalidRequest, op, "productname.en is required"))
	}
	primary := result.First(fieldProductImage)
	if primary == nil {
		return h.abort(c, result, apperr.Errorf(apperr.KindInvalidRequest, op, "productImage is required"))
	}

	product := &models.Product{
		ProductName:          *input.ProductName,
		ProductAmount:        1,
		ProductImage:         primary.URL,
		ProductDetailsImages: imageRefs(result.URLs(fieldProductDetails)),
	}
	if input.ProductDescription != nil {
		product.ProductDescription = *input.ProductDescription
	}
	if input.Type != nil {
		product.Type = *input.Type
	}
	if input.ProductAmount != nil {
		product.ProductAmount = *input.ProductAmount
	}
	if input.ProductPrice != nil {
		product.ProductPrice = *input.ProductPrice
	}
	if input.DiscountPrice != nil {
		product.DiscountPrice = *input.DiscountPrice
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}

	if err := h.products.Create(c.UserContext(), product); err != nil {
		return h.abort(c, result, err)
	}

	return response.Success(c, fiber.StatusCreated, "Product created successfully", fiber.Map{
		"product":         product,
		"imageProcessing": result.Summary,
	})
}

// Update replaces only the fields and images present in the request.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	result := middleware.UploadResult(c)

	input := new(productPayload)
	if err := parseDataField(c, input, false); err != nil {
		return h.abort(c, result, err)
	}
	if input.ProductName != nil && input.ProductName.En == "" {
		return h.abort(c, result, apperr.Errorf(apperr.KindInvalidRequest, "handler.UpdateProduct", "productname.en is required"))
	}

	set := input.updates()
	if primary := result.First(fieldProductImage); primary != nil {
		set["productImage"] = primary.URL
	}
	if urls := result.URLs(fieldProductDetails); len(urls) > 0 {
		set["productDetailsImages"] = imageRefs(urls)
	}

	product, err := h.products.Update(c.UserContext(), c.Params("id"), set)
	if err != nil {
		return h.abort(c, result, err)
	}

	return response.Success(c, fiber.StatusOK, "Product updated successfully", fiber.Map{
		"product":         product,
		"imageProcessing": result.Summary,
	})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) abort(c *fiber.Ctx, result *upload.Result, err error) error {
	logOrphans(h.log, result, err)
	return response.Error(c, err)
}

func imageRefs(urls []string) []models.ImageRef {
	refs := make([]models.ImageRef, 0, len(urls))
	for _, u := range urls {
		refs = append(refs, models.ImageRef{URL: u})
	}
	return refs
}

// logOrphans records assets that were published for a request that then
// failed. They stay on the remote store.
func logOrphans(log *slog.Logger, result *upload.Result, err error) {
	ids := result.PublicIDs()
	if len(ids) == 0 {
		return
	}
	log.Warn("published assets orphaned by failed request", "public_ids", ids, "err", err)
}
