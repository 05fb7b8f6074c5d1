package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/mmynk/receiptsplit/internal/models"
)

var commandSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"items": map[string]any{
			"type": "ARRAY",
			"items": map[string]any{
				"type": "OBJECT",
				"properties": map[string]any{
					"id": map[string]any{"type": "STRING"},
					"assigned_to": map[string]any{
						"type":        "ARRAY",
						"items":       map[string]any{"type": "STRING"},
						"description": "List of people's names assigned to this item.",
					},
				},
				"required": []string{"id", "assigned_to"},
			},
		},
		"people_found": map[string]any{
			"type":        "ARRAY",
			"items":       map[string]any{"type": "STRING"},
			"description": "All unique people names identified in the current command.",
		},
		"response_message": map[string]any{
			"type":        "STRING",
			"description": "A short, friendly confirmation summarizing what was done.",
		},
	},
	"required": []string{"items", "people_found", "response_message"},
}

type commandItemPayload struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Price              float64  `json:"price"`
	CurrentAssignments []string `json:"current_assignments"`
}

type commandAnswer struct {
	Items []struct {
		ID         string   `json:"id" validate:"required"`
		AssignedTo []string `json:"assigned_to"`
	} `json:"items" validate:"required,dive"`
	PeopleFound     []string `json:"people_found"`
	ResponseMessage string   `json:"response_message"`
}

// InterpretCommand asks the model which items the command assigns to whom.
// The answer may cover only some items or name unknown IDs; callers decide
// what to apply.
func (c *Client) InterpretCommand(ctx context.Context, items []models.CommandItem, command string) (models.CommandResult, error) {
	payload := make([]commandItemPayload, len(items))
	for i, item := range items {
		payload[i] = commandItemPayload(item)
	}
	itemsJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return models.CommandResult{}, fmt.Errorf("marshal command items: %w", err)
	}

	text, err := c.generate(ctx, OpCommand, generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: c.commandPrompt(string(itemsJSON), command)}},
		}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   commandSchema,
			Temperature:      0.2,
		},
	})
	if err != nil {
		return models.CommandResult{}, err
	}

	result, err := parseCommandAnswer(text)
	if err != nil {
		return models.CommandResult{}, &ExternalServiceError{Op: OpCommand, Message: "malformed command answer", Err: err}
	}
	return result, nil
}

func (c *Client) commandPrompt(itemsJSON, command string) string {
	return fmt.Sprintf(`Current receipt items:
%s

User command: %q

Instructions:
1. Update the "assigned_to" list of items based on the user's command.
2. Use fuzzy matching for item names (e.g. "coke" matches "Coca Cola").
3. If several people share an item, list all their names in "assigned_to".
4. If the user says everyone shared an item, list every person known so far.
5. Keep existing assignments unless the user explicitly changes or removes them.
6. Return the full list of items with their IDs and the new "assigned_to" state.
7. Write "response_message" as a short, helpful confirmation in %s.`, itemsJSON, command, c.cfg.ReplyLanguage)
}

func parseCommandAnswer(text string) (models.CommandResult, error) {
	raw, err := extractJSON(text)
	if err != nil {
		return models.CommandResult{}, err
	}
	var answer commandAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err != nil {
		return models.CommandResult{}, fmt.Errorf("decode command answer: %w", err)
	}
	if err := validate.Struct(answer); err != nil {
		return models.CommandResult{}, fmt.Errorf("validate command answer: %w", err)
	}

	result := models.CommandResult{
		Updates: make([]models.AssignmentUpdate, len(answer.Items)),
		People:  answer.PeopleFound,
		Message: strings.TrimSpace(answer.ResponseMessage),
	}
	for i, item := range answer.Items {
		result.Updates[i] = models.AssignmentUpdate{ID: item.ID, AssignedTo: item.AssignedTo}
	}
	if result.People == nil {
		result.People = []string{}
	}
	return result, nil
}
