package handler

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/gofiber/fiber/v2"

	"github.com/rayansaffron/storefront/models"
	"github.com/rayansaffron/storefront/response"
)

type OrderHandler struct {
	orders   OrderStore
	notifier Notifier
	log      *slog.Logger
	newCode  func() string
}

func NewOrderHandler(orders OrderStore, notifier Notifier, log *slog.Logger) *OrderHandler {
	if log == nil {
		log = slog.Default()
	}
	return &OrderHandler{orders: orders, notifier: notifier, log: log, newCode: orderCode}
}

// orderCode is an 8 digit, human-readable reference. It is not unique.
func orderCode() string {
	return fmt.Sprintf("%08d", rand.IntN(100_000_000))
}

func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	type OrderData struct {
		Username          string                    `json:"username" validate:"required"`
		Phone             string                    `json:"phone" validate:"required"`
		Address           string                    `json:"address" validate:"required"`
		ShippingMethod    string                    `json:"shippingMethod" validate:"required"`
		Quantity          float64                   `json:"quantity" validate:"gt=0"`
		Unit              string                    `json:"unit" validate:"required"`
		PurchasedProducts []models.PurchasedProduct `json:"purchasedProducts" validate:"required,min=1,dive"`
	}

	input := new(OrderData)
	if err := parseBody(c, input); err != nil {
		return response.Error(c, err)
	}

	order := &models.Order{
		OrderCode:         h.newCode(),
		Username:          input.Username,
		Phone:             input.Phone,
		Address:           input.Address,
		ShippingMethod:    input.ShippingMethod,
		Quantity:          input.Quantity,
		Unit:              input.Unit,
		PurchasedProducts: input.PurchasedProducts,
	}
	if err := h.orders.Create(c.UserContext(), order); err != nil {
		return response.Error(c, err)
	}

	// The order is stored; a failed notification must not make the client resubmit.
	if err := h.notifier.NotifyOrder(c.UserContext(), order); err != nil {
		h.log.Error("order notification failed", "order_id", order.ID, "order_code", order.OrderCode, "err", err)
	}

	return response.Success(c, fiber.StatusCreated, "Order submitted successfully", fiber.Map{
		"orderCode": order.OrderCode,
		"order":     order,
	})
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.orders.List(c.UserContext())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Orders found", orders)
}

func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	if err := h.orders.Cancel(c.UserContext(), c.Params("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, fiber.StatusOK, "Order cancelled successfully", nil)
}
