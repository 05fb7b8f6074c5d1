package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mmynk/receiptsplit/internal/models"
)

var validate = validator.New()

const receiptPrompt = `Analyze this receipt image. Extract all items, prices, tax, tip, and total. Identify the currency symbol.

Rules:
1. This may be the second half of a long receipt. Read the very top line too; if a price appears without a name, include it.
2. If an item name is cut off but its price is visible, name it "Unknown Item".
3. "price" is the line total (unit price times quantity).
4. If the receipt lists tax separately, extract it even when item prices already include it.
5. Return only JSON matching the schema.`

var receiptSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"items": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"name":     map[string]any{"type": "STRING"},
					"price":    map[string]any{"type": "NUMBER", "description": "Total price for this line item (unit price * quantity)"},
					"quantity": map[string]any{"type": "NUMBER"},
				},
				"required": []string{"name", "price", "quantity"},
			},
		},
		"subtotal": map[string]any{"type": "NUMBER"},
		"tax":      map[string]any{"type": "NUMBER"},
		"tip":      map[string]any{"type": "NUMBER"},
		"total":    map[string]any{"type": "NUMBER"},
		"currency": map[string]any{"type": "STRING", "description": "Currency symbol, e.g. $, €, £"},
	},
	"required": []string{"items", "subtotal", "total"},
}

type receiptAnswer struct {
	Items    []itemAnswer `json:"items" validate:"required,dive"`
	Subtotal Number       `json:"subtotal"`
	Tax      Number       `json:"tax"`
	Tip      Number       `json:"tip"`
	Total    Number       `json:"total" validate:"gte=0"`
	Currency string       `json:"currency" validate:"max=8"`
}

type itemAnswer struct {
	Name     string `json:"name" validate:"max=200"`
	Price    Number `json:"price"`
	Quantity Number `json:"quantity" validate:"gte=0"`
}

// ScanReceipt reads a receipt image. The answer is checked against the
// expected shape; defaults are left to the caller.
func (c *Client) ScanReceipt(ctx context.Context, img Image) (models.RawReceipt, error) {
	text, err := c.generate(ctx, OpScan, generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MIMEType: img.MIMEType, Data: img.Base64}},
				{Text: receiptPrompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   receiptSchema,
			Temperature:      0.1,
		},
	})
	if err != nil {
		return models.RawReceipt{}, err
	}

	answer, err := parseReceiptAnswer(text)
	if err != nil {
		return models.RawReceipt{}, &ExternalServiceError{Op: OpScan, Message: "malformed receipt", Err: err}
	}
	return answer.toRaw(), nil
}

func parseReceiptAnswer(text string) (receiptAnswer, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return receiptAnswer{}, err
	}
	var answer receiptAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return receiptAnswer{}, fmt.Errorf("decode receipt: %w", err)
	}
	if err := validate.Struct(answer); err != nil {
		return receiptAnswer{}, fmt.Errorf("validate receipt: %w", err)
	}
	return answer, nil
}

func (a receiptAnswer) toRaw() models.RawReceipt {
	raw := models.RawReceipt{
		Items:    make([]models.RawItem, len(a.Items)),
		Subtotal: a.Subtotal.Float(),
		Tax:      a.Tax.Float(),
		Tip:      a.Tip.Float(),
		Total:    a.Total.Float(),
		Currency: strings.TrimSpace(a.Currency),
	}
	for i, item := range a.Items {
		raw.Items[i] = models.RawItem{
			Name:     item.Name,
			Price:    item.Price.Float(),
			Quantity: item.Quantity.Float(),
		}
	}
	return raw
}
