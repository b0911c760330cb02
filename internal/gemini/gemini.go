// Package gemini implements query.Generator on Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/justestif/go-moodflix/internal/query"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultModel   = "gemini-1.5-flash"
	DefaultTimeout = 15 * time.Second
)

var (
	// ErrMissingAPIKey is returned by New when no API key is configured.
	ErrMissingAPIKey = errors.New("missing Gemini API key")

	// ErrEmptyResponse is returned when the model answers without text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// Config holds Gemini settings.
type Config struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	Temperature float32
}

// Client generates structured-query JSON with a Gemini model.
type Client struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	temperature float32

	// Overridden in tests.
	newModel func(name string) *genai.GenerativeModel
	send     func(ctx context.Context, m *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error)
}

// New connects a Gemini client. Close must be called when done.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	c := &Client{
		client:      gc,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		newModel:    gc.GenerativeModel,
		send:        sendPrompt,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Generate sends prompt to the model. A non-nil schema switches the model to
// JSON output constrained by that schema. A fresh model value is built per
// call so concurrent requests never share generation settings.
func (c *Client) Generate(ctx context.Context, prompt string, schema *query.Schema) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	m := c.newModel(c.model)
	c.configure(m, schema)

	resp, err := c.send(ctx, m, prompt)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (c *Client) configure(m *genai.GenerativeModel, schema *query.Schema) {
	if c.temperature > 0 {
		m.SetTemperature(c.temperature)
	}
	if schema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = convertSchema(schema)
	}
}

func sendPrompt(ctx context.Context, m *genai.GenerativeModel, prompt string) (*genai.GenerateContentResponse, error) {
	return m.GenerateContent(ctx, genai.Text(prompt))
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var schemaTypes = map[query.SchemaType]genai.Type{
	query.TypeObject:  genai.TypeObject,
	query.TypeArray:   genai.TypeArray,
	query.TypeString:  genai.TypeString,
	query.TypeInteger: genai.TypeInteger,
	query.TypeBoolean: genai.TypeBoolean,
}

// convertSchema maps the provider-neutral schema onto genai.Schema.
func convertSchema(s *query.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       convertSchema(s.Items),
	}
	if s.Type == query.TypeString && len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = convertSchema(prop)
		}
	}
	return out
}

var _ query.Generator = (*Client)(nil)
