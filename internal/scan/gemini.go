package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"satang/internal/core"
	applog "satang/internal/log"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const scanPrompt = `You are reading a photo of a Thai receipt. Respond with a single JSON object,
no markdown fences, with the fields: "amount_thb" (number, the total billed
amount in Thai Baht), "category" (one of Transport, Food, Drink, Weed,
Purchase, Play, Other) and "description" (short label for the purchase).
If the image is not a readable receipt respond with {}.`

// Gemini calls the Generative Language REST API to extract expense fields
// from a receipt photo.
type Gemini struct {
	http    *http.Client
	baseURL string
	apiKey  string
	model   string
	logger  *applog.Logger
}

func NewGemini(apiKey, model string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		logger:  applog.Default(applog.ComponentScan),
	}
}

// NewGeminiWithBaseURL is used by tests to point the client at a fake server.
func NewGeminiWithBaseURL(baseURL, apiKey, model string) *Gemini {
	g := NewGemini(apiKey, model)
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Scan sends the image to the model and parses its JSON reply. Any transport
// or parse failure is returned as an error; an unreadable receipt yields
// (nil, nil).
func (g *Gemini) Scan(ctx context.Context, imageBase64, mimeType string) (*Result, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: scanPrompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: imageBase64}},
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("encode scan request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scan request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan receipt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scan endpoint http %d", resp.StatusCode)
	}

	var raw generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode scan response: %w", err)
	}
	if len(raw.Candidates) == 0 || len(raw.Candidates[0].Content.Parts) == 0 {
		return nil, nil
	}

	text := strings.TrimSpace(raw.Candidates[0].Content.Parts[0].Text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var extracted struct {
		AmountTHB   float64 `json:"amount_thb"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &extracted); err != nil {
		g.logger.DebugContext(ctx, "Unparsable scan reply",
			applog.FieldOperation, applog.OpScan,
			applog.FieldError, err)
		return nil, nil
	}
	if extracted.AmountTHB <= 0 {
		return nil, nil
	}

	return &Result{
		AmountTHB:   extracted.AmountTHB,
		Category:    core.ParseCategory(extracted.Category),
		Description: strings.TrimSpace(extracted.Description),
	}, nil
}
