package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	jsoniter "github.com/json-iterator/go"
	"github.com/sashabaranov/go-openai"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultModel        = "gemini-2.0-flash"
	DefaultSystemPrompt = "You are a helpful assistant."

	notesTemperature = 0.2
	notesRequest     = "Using the conversation above, generate the JSON now."
)

var ErrEmptyChoices = errors.New("no response from language model")

// IChat talks to an OpenAI compatible chat completion endpoint.
type IChat interface {
	Respond(ctx context.Context, req voice.ResponderRequest) (string, error)
	GenerateNotes(ctx context.Context, req NotesRequest) (entity.FeedbackArtifact, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: os.Getenv("GEMINI_BASE_URL"),
		Model:   os.Getenv("GEMINI_MODEL_NAME"),
	}
}

type NotesRequest struct {
	Topic          string
	CoachingOption string
	ExpertName     string
	Conversation   []entity.ConversationEntry
}

type chatClient struct {
	client *openai.Client
	model  string
}

func New(cfg Config) IChat {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &chatClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (c *chatClient) Respond(ctx context.Context, req voice.ResponderRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: BuildMessages(req),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// BuildMessages prepends the system prompt to the cleaned history and appends
// the new message unless it repeats the last user entry.
func BuildMessages(req voice.ResponderRequest) []openai.ChatCompletionMessage {
	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultSystemPrompt
	}

	history := mapHistory(req.History)
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt,
	})
	messages = append(messages, history...)

	if strings.TrimSpace(req.Message) != "" {
		n := len(history)
		if n == 0 || history[n-1].Role != openai.ChatMessageRoleUser || history[n-1].Content != req.Message {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Message,
			})
		}
	}

	return messages
}

func mapHistory(history []voice.HistoryMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		if strings.EqualFold(m.Role, openai.ChatMessageRoleAssistant) {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func NotesSystemPrompt(topic, coachingOption, expertName string) string {
	return fmt.Sprintf(`You are an educational note-taking assistant. Based on the conversation between a coach (assistant) and a learner (user) about topic "%s" using coaching style "%s" with expert "%s", produce comprehensive notes and constructive feedback.
Return a single valid JSON object with exactly these keys:
- summary: 3-6 sentences summarizing the session
- notes: array of concise bullet points covering concepts, examples, and clarifications
- feedback: string with strengths and specific improvements
- action_items: array of concrete next steps and practice prompts
No markdown or extra commentary. Output only JSON.`, topic, coachingOption, expertName)
}

// GenerateNotes asks for a JSON feedback artifact. Backends that reject the
// JSON response format are retried without it, and unparseable output is
// wrapped into the artifact as free text.
func (c *chatClient) GenerateNotes(ctx context.Context, req NotesRequest) (entity.FeedbackArtifact, error) {
	history := make([]voice.HistoryMessage, 0, len(req.Conversation))
	for _, entry := range req.Conversation {
		history = append(history, voice.HistoryMessage{Role: string(entry.Role), Content: entry.Content})
	}

	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: NotesSystemPrompt(req.Topic, req.CoachingOption, req.ExpertName),
	}}
	messages = append(messages, mapHistory(history)...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: notesRequest,
	})

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: notesTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		request.ResponseFormat = nil
		resp, err = c.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return entity.FeedbackArtifact{}, fmt.Errorf("notes completion error: %w", err)
		}
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return ParseFeedback(content), nil
}

func ParseFeedback(content string) entity.FeedbackArtifact {
	var artifact entity.FeedbackArtifact
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &artifact); err == nil {
		if artifact.Notes == nil {
			artifact.Notes = []string{}
		}
		if artifact.ActionItems == nil {
			artifact.ActionItems = []string{}
		}
		return artifact
	}

	summary, feedback := content, content
	if summary == "" {
		summary = "No summary provided."
		feedback = "No feedback provided."
	}
	return entity.FeedbackArtifact{
		Summary:     summary,
		Notes:       []string{},
		Feedback:    feedback,
		ActionItems: []string{},
	}
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	return strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
}
