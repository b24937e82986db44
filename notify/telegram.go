package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rayansaffron/storefront/models"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts shop notifications to a single chat.
type Telegram struct {
	bot    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) NotifyOrder(ctx context.Context, order *models.Order) error {
	return t.send(ctx, tgbotapi.NewMessage(t.chatID, OrderMessage(order)))
}

func (t *Telegram) NotifyContact(ctx context.Context, email string) error {
	msg := tgbotapi.NewMessage(t.chatID, ContactMessage(email))
	msg.ParseMode = tgbotapi.ModeMarkdown
	return t.send(ctx, msg)
}

func (t *Telegram) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func OrderMessage(o *models.Order) string {
	var b strings.Builder
	b.WriteString("📦 New order submitted!\n")
	fmt.Fprintf(&b, "Order Code: %s\n", o.OrderCode)
	fmt.Fprintf(&b, "Name: %s\n", o.Username)
	fmt.Fprintf(&b, "Phone: %s\n", o.Phone)
	fmt.Fprintf(&b, "Address: %s\n", o.Address)
	fmt.Fprintf(&b, "Shipping: %s\n", o.ShippingMethod)
	fmt.Fprintf(&b, "Quantity: %g %s\n", o.Quantity, o.Unit)
	b.WriteString("Products:\n")
	for _, p := range o.PurchasedProducts {
		fmt.Fprintf(&b, "%s (%s)\n", p.ProductName, p.Type)
	}
	return b.String()
}

func ContactMessage(email string) string {
	return fmt.Sprintf("📬 *New Email Submission!*\n\n"+
		"💡 Someone has submitted their email to contact you.\n\n"+
		"✉️ Email: _%s_\n\n"+
		"Please reach out to them as soon as possible ✅", tgbotapi.EscapeText(tgbotapi.ModeMarkdown, email))
}

// Log stands in for Telegram when no bot token is configured.
type Log struct {
	Logger *slog.Logger
}

func (l Log) NotifyOrder(ctx context.Context, order *models.Order) error {
	l.logger().Info("order notification", "order_code", order.OrderCode, "products", len(order.PurchasedProducts))
	return nil
}

func (l Log) NotifyContact(ctx context.Context, email string) error {
	l.logger().Info("contact notification", "email", email)
	return nil
}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}
