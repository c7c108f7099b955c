package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/moveinsync/movi/internal/domain"
	"github.com/moveinsync/movi/internal/port/llm"
)

// Page-specific prompts steer the vision model toward the entities each
// screen actually displays.
const busDashboardPrompt = `You are analyzing a screenshot from the busDashboard page of a transport management system.

The busDashboard shows:
- A list of daily trips in the left panel (each trip has a name like "Bulk - 00:01", "Path-1 Evening - 19:00", etc.)
- Each trip shows booking percentage and status
- The right panel shows details for the selected trip including vehicle and driver assignments

Your task: Extract relevant information from the screenshot to help process the user's request.

Look for:
1. Trip names (like "Bulk - 00:01", "Path Path - 00:02", etc.)
2. Booking percentages
3. Vehicle license plates (like "KA-01-AB-1234")
4. Driver names
5. Any highlighted or pointed-out items (red arrows, circles, etc.)

Be specific and precise. If the user is pointing to a specific trip, identify it by its exact display name.`

const manageRoutePrompt = `You are analyzing a screenshot from the manageRoute page of a transport management system.

The manageRoute page shows:
- Routes with their names, times, and paths
- Stop sequences for paths
- Route statuses (active/deactivated)

Your task: Extract relevant information from the screenshot to help process the user's request.

Look for:
1. Route names (like "Path-1 - 07:00")
2. Stop names in sequences
3. Path names
4. Any highlighted or pointed-out items

Be specific and precise.`

const genericPagePrompt = `You are analyzing a screenshot from a transport management system. Extract any relevant information about trips, routes, vehicles, or drivers that could help process the user's request.`

func contextPrompt(page string) string {
	switch page {
	case "busDashboard":
		return busDashboardPrompt
	case "manageRoute":
		return manageRoutePrompt
	default:
		return genericPagePrompt
	}
}

// DescribeImage sends one screenshot to the vision model and returns its
// textual analysis.
func (c *Client) DescribeImage(ctx context.Context, req llm.VisionRequest) (string, error) {
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	prompt := fmt.Sprintf(
		"%s\n\nUser's request: %s\n\nPlease analyze the image and extract the relevant information to help fulfill this request. Be concise and specific.",
		contextPrompt(req.Page), req.UserMessage)

	payload := map[string]any{
		"model":       c.visionModel,
		"temperature": 0,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{
						"type": "text",
						"text": prompt,
					},
					{
						"type": "image_url",
						"image_url": map[string]any{
							"url": fmt.Sprintf("data:%s;base64,%s", mimeType, req.ImageB64),
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	data, err := c.doRequest(ctx, "/chat/completions", body)
	if err != nil {
		return "", fmt.Errorf("vision analysis: %w", err)
	}

	var resp completionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("unmarshal vision response: %w: %v", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision response has no choices: %w", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}
