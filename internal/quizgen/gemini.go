package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quizforge/quizforge-lms/internal/quiz"
)

// MaxPromptChars caps how much extracted text is sent to the model. A
// context-size safeguard, not a correctness guarantee.
const MaxPromptChars = 10000

// Client generates multiple-choice question drafts with Gemini.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := c.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &Client{client: c, model: model}, nil
}

func (c *Client) Close() error { return c.client.Close() }

// Generate asks for exactly n drafts built from text. Callers clamp n to
// [1,20] before the call. On an API error or an unparseable payload the raw
// response is logged for diagnosis and an error returned; there is no retry.
func (c *Client) Generate(ctx context.Context, text string, n int) ([]quiz.QuestionDraft, error) {
	if len(text) > MaxPromptChars {
		text = text[:MaxPromptChars]
	}
	prompt := buildPrompt(text, n)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini call: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini returned no candidates")
	}
	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			raw.WriteString(string(t))
		}
	}

	drafts, err := ParseDrafts(raw.String())
	if err != nil {
		log.Printf("quizgen: unparseable response: %v\nraw: %s", err, raw.String())
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return drafts, nil
}

func buildPrompt(text string, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following course material, generate exactly %d multiple-choice quiz questions.\n\n", n)
	sb.WriteString("Respond ONLY with a JSON array. Each element must have this structure:\n")
	sb.WriteString(`{
  "question": "The question text",
  "options": [
    "Option A text",
    "Option B text",
    "Option C text",
    "Option D text"
  ],
  "correct": "The exact text of one of the options above",
  "justification": "A brief explanation, grounded in the material, of why this answer is correct"
}` + "\n\n")
	sb.WriteString("Material:\n---\n")
	sb.WriteString(text)
	sb.WriteString("\n---\n")
	return sb.String()
}

// ParseDrafts decodes the model payload, tolerating markdown code fences
// around the JSON. Drafts with an empty question or fewer than two options
// are rejected; a correct text matching no option is passed through for the
// store to record as-is.
func ParseDrafts(raw string) ([]quiz.QuestionDraft, error) {
	payload := stripFences(raw)
	if payload == "" {
		return nil, errors.New("empty payload")
	}
	var drafts []quiz.QuestionDraft
	if err := json.Unmarshal([]byte(payload), &drafts); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, errors.New("payload contained no questions")
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Prompt) == "" {
			return nil, fmt.Errorf("draft %d: empty question", i)
		}
		if len(d.Options) < 2 {
			return nil, fmt.Errorf("draft %d: %d options", i, len(d.Options))
		}
	}
	return drafts, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	// tolerate stray prose around the array
	if i := strings.Index(s, "["); i > 0 {
		if j := strings.LastIndex(s, "]"); j > i {
			s = s[i : j+1]
		}
	}
	return strings.TrimSpace(s)
}
