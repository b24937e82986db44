package notify

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayansaffron/storefront/models"
)

type recordingBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (r *recordingBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if r.err != nil {
		return tgbotapi.Message{}, r.err
	}
	r.sent = append(r.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func testOrder() *models.Order {
	return &models.Order{
		OrderCode:      "12345678",
		Username:       "Zahra",
		Phone:          "+93 700 000 000",
		Address:        "Herat",
		ShippingMethod: "post",
		Quantity:       2.5,
		Unit:           "g",
		PurchasedProducts: []models.PurchasedProduct{
			{ProductName: "Sargol", Type: "premium"},
			{ProductName: "Negin", Type: "super"},
		},
	}
}

func TestOrderMessage(t *testing.T) {
	msg := OrderMessage(testOrder())

	assert.Contains(t, msg, "Order Code: 12345678")
	assert.Contains(t, msg, "Quantity: 2.5 g")
	assert.Contains(t, msg, "Sargol (premium)\nNegin (super)\n")
}

func TestNotifyOrderSendsToChat(t *testing.T) {
	bot := &recordingBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	require.NoError(t, tg.NotifyOrder(context.Background(), testOrder()))
	require.Len(t, bot.sent, 1)
	assert.EqualValues(t, 42, bot.sent[0].ChatID)
	assert.Empty(t, bot.sent[0].ParseMode)
}

func TestNotifyContactUsesMarkdown(t *testing.T) {
	bot := &recordingBot{}
	tg := &Telegram{bot: bot, chatID: 42}

	require.NoError(t, tg.NotifyContact(context.Background(), "buyer_1@example.com"))
	require.Len(t, bot.sent, 1)
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, `buyer\_1@example.com`)
}

func TestNotifySendError(t *testing.T) {
	tg := &Telegram{bot: &recordingBot{err: errors.New("flood wait")}, chatID: 1}
	assert.ErrorContains(t, tg.NotifyContact(context.Background(), "a@b.c"), "flood wait")
}
