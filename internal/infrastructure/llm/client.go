package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yashdave182/medinote/config"
	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingAPIKey        = errors.New("note generation API key is not configured")
	ErrNoteGenerationFailed = errors.New("note generation failed")
)

const systemPrompt = `You are a clinical documentation assistant. Convert the consultation transcript into a SOAP note.
Respond with a single JSON object using exactly these keys:
{"subjective": string, "objective": string, "assessment": string, "plan": string,
 "entities": {"symptoms": [string], "medications": [string], "conditions": [string], "durations": [string], "severity": [string]}}
Only use information present in the transcript. Leave a field empty if the transcript does not cover it.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client generates SOAP drafts through an OpenAI-compatible chat completions API
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	log         *logrus.Logger
}

func NewClient(cfg config.LLMConfig, log *logrus.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		log:         log,
	}
}

// GenerateNote asks the model for a structured note. Transport and vendor
// errors are returned; an unparseable reply is not an error.
func (c *Client) GenerateNote(ctx context.Context, transcript, patientName string) (*entity.SOAPNote, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	content, err := c.complete(ctx, buildUserPrompt(transcript, patientName))
	if err != nil {
		return nil, err
	}

	return ParseSOAPNote(content), nil
}

func buildUserPrompt(transcript, patientName string) string {
	var b strings.Builder
	if name := strings.TrimSpace(patientName); name != "" {
		fmt.Fprintf(&b, "Patient: %s\n\n", name)
	}
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoteGenerationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: vendor returned status %d: %s", ErrNoteGenerationFailed, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrNoteGenerationFailed, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrNoteGenerationFailed, out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrNoteGenerationFailed)
	}

	c.log.Debugf("Note generation returned %d characters", len(out.Choices[0].Message.Content))
	return out.Choices[0].Message.Content, nil
}
