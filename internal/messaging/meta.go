// Package messaging wraps the Meta WhatsApp Cloud API endpoints the
// campaign needs: template sends for the opening message and free-text
// sends for everything after.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dominusativos/captazap/pkg/logging"
)

const defaultBaseURL = "https://graph.facebook.com/v20.0"

// Config controls how the Meta client behaves.
type Config struct {
	BaseURL       string
	Token         string
	PhoneNumberID string
	Timeout       time.Duration
	HTTPClient    *http.Client
	Logger        *logging.Logger
}

// MetaClient talks to the Graph messages endpoint of one WhatsApp
// business number.
type MetaClient struct {
	baseURL       string
	token         string
	phoneNumberID string
	httpClient    *http.Client
	logger        *logging.Logger
}

// Template identifies an approved message template and its body
// parameters.
type Template struct {
	Name     string
	Language string
	Params   []string
}

// NewMetaClient creates a configured client with sane defaults.
func NewMetaClient(cfg Config) (*MetaClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("messaging: META token is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("messaging: phone number id is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &MetaClient{
		baseURL:       baseURL,
		token:         cfg.Token,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

type textPayload struct {
	Body string `json:"body"`
}

type languagePayload struct {
	Code string `json:"code"`
}

type parameterPayload struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type componentPayload struct {
	Type       string             `json:"type"`
	Parameters []parameterPayload `json:"parameters"`
}

type templatePayload struct {
	Name       string             `json:"name"`
	Language   languagePayload    `json:"language"`
	Components []componentPayload `json:"components,omitempty"`
}

type messageRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             *textPayload     `json:"text,omitempty"`
	Template         *templatePayload `json:"template,omitempty"`
}

type messageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText sends a free-text message and returns the provider message id.
func (c *MetaClient) SendText(ctx context.Context, to, body string) (string, error) {
	return c.post(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &textPayload{Body: body},
	})
}

// SendTemplate sends an approved template message and returns the provider
// message id.
func (c *MetaClient) SendTemplate(ctx context.Context, to string, tpl Template) (string, error) {
	payload := &templatePayload{
		Name:     tpl.Name,
		Language: languagePayload{Code: tpl.Language},
	}
	if len(tpl.Params) > 0 {
		params := make([]parameterPayload, 0, len(tpl.Params))
		for _, p := range tpl.Params {
			params = append(params, parameterPayload{Type: "text", Text: p})
		}
		payload.Components = []componentPayload{{Type: "body", Parameters: params}}
	}
	return c.post(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         payload,
	})
}

func (c *MetaClient) post(ctx context.Context, reqBody messageRequest) (string, error) {
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("messaging: marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("messaging: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messaging: send %s to %s: %w", reqBody.Type, reqBody.To, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("messaging: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("messaging: graph api status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed messageResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("messaging: decode response: %w", err)
	}
	if len(parsed.Messages) == 0 {
		return "", errors.New("messaging: response carried no message id")
	}
	return parsed.Messages[0].ID, nil
}
