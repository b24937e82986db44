package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const systemInstruction = `You are the Rayan Saffron assistant for an Afghan saffron shop.
Answer questions about saffron grades, quality, storage, pricing and shipping.
Reply in the language the customer writes in (English, Farsi/Dari or Arabic).
Be helpful, warm and concise. For exact prices or order status, point the
customer to the shop pages or the contact form.`

const maxOutputTokens = 512

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Assistant answers storefront chat messages with a Gemini model.
type Assistant struct {
	models generator
	model  string
}

func NewAssistant(ctx context.Context, apiKey, model string) (*Assistant, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Assistant{models: client.Models, model: model}, nil
}

func (a *Assistant) Reply(ctx context.Context, message string) (string, error) {
	result, err := a.models.GenerateContent(ctx, a.model, genai.Text(message), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		MaxOutputTokens:   maxOutputTokens,
		Temperature:       genai.Ptr[float32](0.7),
	})
	if err != nil {
		return "", fmt.Errorf("generate reply: %w", err)
	}

	reply := strings.TrimSpace(result.Text())
	if reply == "" {
		return "", errors.New("model returned no text")
	}
	return reply, nil
}
